package notify

import (
	"context"
	"fmt"
	"time"

	"arenaapp/domain/events"
	"arenaapp/domain/utils"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorPrimary = 0x5865F2
	colorSuccess = 0x57F287
	colorDanger  = 0xED4245
	colorWarning = 0xFEE75C
	colorInfo    = 0x3498DB
)

const sendTimeout = 5 * time.Second

// EmbedSender is the part of a discord session the notifier needs
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts contest lifecycle announcements to a channel
type DiscordNotifier struct {
	sender    EmbedSender
	channelID string
}

// NewDiscordNotifier creates a notifier posting to channelID
func NewDiscordNotifier(sender EmbedSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		sender:    sender,
		channelID: channelID,
	}
}

// NewDiscordSession opens a bot session for posting announcements
func NewDiscordSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	return session, nil
}

// Subscriptions returns the event types the notifier handles
func (n *DiscordNotifier) Subscriptions() []events.EventType {
	return []events.EventType{
		events.EventTypeContestCreated,
		events.EventTypeContestAccepted,
		events.EventTypeContestCancelled,
		events.EventTypeContestSettled,
		events.EventTypeWinningsClaimed,
	}
}

// Handle builds the announcement for an event and posts it
func (n *DiscordNotifier) Handle(ctx context.Context, event events.Event) error {
	embed := BuildEmbed(event)
	if embed == nil {
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed, discordgo.WithContext(sendCtx)); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"channelID": n.channelID,
			"error":     err,
		}).Error("Failed to post arena announcement")
		return fmt.Errorf("failed to send embed: %w", err)
	}

	log.WithField("eventType", event.Type()).Debug("Posted arena announcement")
	return nil
}

// BuildEmbed renders an event as a discord embed, or nil for events that are not announced
func BuildEmbed(event events.Event) *discordgo.MessageEmbed {
	switch e := event.(type) {
	case events.ContestCreatedEvent:
		return contestCreatedEmbed(e)
	case events.ContestAcceptedEvent:
		return contestAcceptedEmbed(e)
	case events.ContestCancelledEvent:
		return contestCancelledEmbed(e)
	case events.ContestSettledEvent:
		return contestSettledEmbed(e)
	case events.WinningsClaimedEvent:
		return winningsClaimedEmbed(e)
	default:
		return nil
	}
}

func footer(contestID int64) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Contest ID: %d", contestID)}
}

func contestCreatedEmbed(e events.ContestCreatedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚔️ New Contest",
		Description: fmt.Sprintf("**%s**", e.Topic),
		Color:       colorWarning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Challenger", Value: e.Initiator, Inline: true},
			{Name: "Opponent", Value: e.Opponent, Inline: true},
			{Name: "Stake", Value: utils.FormatSOL(e.Stake), Inline: true},
			{Name: "Voting Window", Value: (time.Duration(e.VotingWindow) * time.Second).String(), Inline: true},
		},
		Footer: footer(e.ContestID),
	}
}

func contestAcceptedEmbed(e events.ContestAcceptedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🟢 Contest Live",
		Description: fmt.Sprintf("%s matched the stake of **%s**. Place your wagers and vote.",
			e.Opponent, utils.FormatSOL(e.Stake)),
		Color: colorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Voting Ends", Value: fmt.Sprintf("<t:%d:R>", e.VotingEndsAt), Inline: true},
		},
		Footer: footer(e.ContestID),
	}
}

func contestCancelledEmbed(e events.ContestCancelledEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Contest Cancelled",
		Description: fmt.Sprintf("%s refunded to every wager.", utils.FormatSOL(e.Refunded)),
		Color:       colorDanger,
		Footer:      footer(e.ContestID),
	}
}

func contestSettledEmbed(e events.ContestSettledEvent) *discordgo.MessageEmbed {
	totalVotes := e.VotesForA + e.VotesForB
	return &discordgo.MessageEmbed{
		Title:       "🏆 Contest Settled",
		Description: fmt.Sprintf("**%s**\n%s defeats %s", e.Topic, e.Winner, e.Loser),
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Pool", Value: utils.FormatSOL(e.TotalPool), Inline: true},
			{Name: "Prize Pool", Value: utils.FormatSOL(e.PrizePool), Inline: true},
			{Name: "Fee", Value: utils.FormatSOL(e.Fee), Inline: true},
			{
				Name: "Votes",
				Value: fmt.Sprintf("A: %s (%s)\nB: %s (%s)",
					utils.FormatShortNotation(e.VotesForA), utils.ShareOf(e.VotesForA, totalVotes),
					utils.FormatShortNotation(e.VotesForB), utils.ShareOf(e.VotesForB, totalVotes)),
				Inline: false,
			},
			{
				Name:   "Ratings",
				Value:  fmt.Sprintf("%s: %d\n%s: %d", e.Winner, e.WinnerRating, e.Loser, e.LoserRating),
				Inline: false,
			},
		},
		Footer: footer(e.ContestID),
	}
}

func winningsClaimedEmbed(e events.WinningsClaimedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 Winnings Claimed",
		Description: fmt.Sprintf("%s collected **%s** on a %s wager", e.Bettor, utils.FormatSOL(e.Payout), utils.FormatSOL(e.Amount)),
		Color:       colorInfo,
		Footer:      footer(e.ContestID),
	}
}
