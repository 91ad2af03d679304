package notify

import (
	"bytes"
	"image/png"
	"testing"

	"arenaapp/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreboardImageGenerator_GenerateLeaderboard(t *testing.T) {
	generator := NewScoreboardImageGenerator()

	tests := []struct {
		name         string
		participants []*entities.Participant
		wantHeight   int
	}{
		{
			name:         "empty board keeps the minimum height",
			participants: nil,
			wantHeight:   120,
		},
		{
			name: "rows grow the canvas",
			participants: []*entities.Participant{
				{Identity: "bob", DisplayName: "Bob", Rating: 1032, Wins: 2, Earnings: 2_185_000_000},
				{Identity: "carol", Rating: 1000, Wins: 1, Losses: 1},
				{Identity: "alice", DisplayName: "Alice the Long Named", Rating: 968, Losses: 2},
				{Identity: "dave", Rating: 950, Draws: 1},
				{Identity: "erin", Rating: 940, Losses: 3},
			},
			wantHeight: 25 + 30 + 5*26 + 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := generator.GenerateLeaderboard(tt.participants)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 400, img.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, img.Bounds().Dy())
		})
	}
}
