package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShortNotation(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		expected string
	}{
		{"zero", 0, "0"},
		{"small positive", 999, "999"},
		{"exactly 1k", 1000, "1.0k"},
		{"9.9k", 9900, "9.9k"},
		{"10k", 10000, "10k"},
		{"just under a million", 999999, "999k"},
		{"1.5M", 1_500_000, "1.50M"},
		{"2.19B", 2_190_000_000, "2.19B"},
		{"trillions", 3_000_000_000_000, "3.00T"},
		{"negative", -1500, "-1.5k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatShortNotation(tt.value))
		})
	}
}

func TestFormatSOL(t *testing.T) {
	tests := []struct {
		name     string
		lamports int64
		expected string
	}{
		{"zero", 0, "0.00 SOL"},
		{"one token", LamportsPerSOL, "1.00 SOL"},
		{"one and a half", 1_500_000_000, "1.50 SOL"},
		{"sub-cent precision kept", 1_234_567, "0.001234567 SOL"},
		{"single lamport", 1, "0.000000001 SOL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSOL(tt.lamports))
		})
	}
}

func TestFormatBps(t *testing.T) {
	assert.Equal(t, "5.00%", FormatBps(500))
	assert.Equal(t, "0.00%", FormatBps(0))
	assert.Equal(t, "100.00%", FormatBps(10000))
	assert.Equal(t, "2.50%", FormatBps(250))
}

func TestShareOf(t *testing.T) {
	assert.Equal(t, "0.0%", ShareOf(5, 0))
	assert.Equal(t, "52.2%", ShareOf(1200, 2300))
	assert.Equal(t, "33.3%", ShareOf(1, 3))
	assert.Equal(t, "100.0%", ShareOf(7, 7))
}
