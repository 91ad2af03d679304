package notify

import (
	"context"
	"errors"
	"testing"

	"arenaapp/domain/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	if msg := args.Get(0); msg != nil {
		return msg.(*discordgo.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDiscordNotifier_PostsSettlement(t *testing.T) {
	sender := new(mockSender)
	notifier := NewDiscordNotifier(sender, "chan-1")

	event := events.ContestSettledEvent{
		ContestID:    7,
		Topic:        "Tabs or spaces",
		Winner:       "bob",
		Loser:        "alice",
		TotalPool:    2_300_000_000,
		Fee:          115_000_000,
		PrizePool:    2_185_000_000,
		WinnerRating: 1016,
		LoserRating:  984,
		VotesForA:    1100,
		VotesForB:    1200,
	}

	sender.On("ChannelMessageSendEmbed", "chan-1", mock.MatchedBy(func(embed *discordgo.MessageEmbed) bool {
		return embed.Title == "🏆 Contest Settled" && embed.Footer.Text == "Contest ID: 7"
	})).Return(&discordgo.Message{ID: "m1"}, nil).Once()

	require.NoError(t, notifier.Handle(context.Background(), event))
	sender.AssertExpectations(t)
}

func TestDiscordNotifier_SendFailure(t *testing.T) {
	sender := new(mockSender)
	notifier := NewDiscordNotifier(sender, "chan-1")

	sender.On("ChannelMessageSendEmbed", "chan-1", mock.Anything).Return(nil, errors.New("rate limited")).Once()

	err := notifier.Handle(context.Background(), events.ContestCancelledEvent{ContestID: 3, Refunded: 500})
	assert.ErrorContains(t, err, "rate limited")
	sender.AssertExpectations(t)
}

func TestDiscordNotifier_IgnoresUnannouncedEvents(t *testing.T) {
	sender := new(mockSender)
	notifier := NewDiscordNotifier(sender, "chan-1")

	require.NoError(t, notifier.Handle(context.Background(), events.VoteCastEvent{ContestID: 1, Bettor: "carol"}))
	sender.AssertNotCalled(t, "ChannelMessageSendEmbed", mock.Anything, mock.Anything)
}

func TestBuildEmbed(t *testing.T) {
	tests := []struct {
		name      string
		event     events.Event
		wantTitle string
		wantColor int
		contains  string
	}{
		{
			name:      "created",
			event:     events.ContestCreatedEvent{ContestID: 1, Initiator: "alice", Opponent: "bob", Topic: "Vim", Stake: 1_500_000_000, VotingWindow: 3600},
			wantTitle: "⚔️ New Contest",
			wantColor: colorWarning,
			contains:  "1.50 SOL",
		},
		{
			name:      "accepted",
			event:     events.ContestAcceptedEvent{ContestID: 1, Opponent: "bob", Stake: 1_000_000_000, VotingEndsAt: 1700000000},
			wantTitle: "🟢 Contest Live",
			wantColor: colorPrimary,
			contains:  "<t:1700000000:R>",
		},
		{
			name:      "cancelled",
			event:     events.ContestCancelledEvent{ContestID: 1, Refunded: 2_000_000_000},
			wantTitle: "❌ Contest Cancelled",
			wantColor: colorDanger,
			contains:  "2.00 SOL",
		},
		{
			name:      "settled shows vote share",
			event:     events.ContestSettledEvent{ContestID: 1, Winner: "bob", Loser: "alice", VotesForA: 1, VotesForB: 3},
			wantTitle: "🏆 Contest Settled",
			wantColor: colorSuccess,
			contains:  "75.0%",
		},
		{
			name:      "claimed",
			event:     events.WinningsClaimedEvent{ContestID: 1, Bettor: "dave", Amount: 200, Payout: 364},
			wantTitle: "💰 Winnings Claimed",
			wantColor: colorInfo,
			contains:  "dave collected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := BuildEmbed(tt.event)
			require.NotNil(t, embed)
			assert.Equal(t, tt.wantTitle, embed.Title)
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, flatten(embed), tt.contains)
		})
	}

	assert.Nil(t, BuildEmbed(events.WagerPlacedEvent{}))
}

func flatten(embed *discordgo.MessageEmbed) string {
	out := embed.Title + "\n" + embed.Description
	for _, field := range embed.Fields {
		out += "\n" + field.Name + ": " + field.Value
	}
	return out
}
