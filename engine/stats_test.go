package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1k"},
		{1500, "1.5k"},
		{999999, "1000k"},
		{2000000, "2Mio"},
		{2500000, "2.5Mio"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.amount); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestStatsReturnToPlayer(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	// nothing wagered yet
	if !e.Stats().ReturnToPlayer.IsZero() {
		t.Errorf("RTP = %s on fresh state, want 0", e.Stats().ReturnToPlayer)
	}

	e.mu.Lock()
	e.state.TotalWagered = 400
	e.state.TotalWinnings = 300
	e.mu.Unlock()

	want := decimal.RequireFromString("0.75")
	if got := e.Stats().ReturnToPlayer; !got.Equal(want) {
		t.Errorf("RTP = %s, want %s", got, want)
	}
}

func TestStatsCounters(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	e.mu.Lock()
	e.state.TotalSpins = 42
	e.state.WonSymbols[SymbolBell] = struct{}{}
	e.state.Achievements[AchFirstWin].Unlocked = true
	e.state.Achievements[AchPlayer].Unlocked = true
	e.mu.Unlock()

	stats := e.Stats()
	if stats.TotalSpins != 42 {
		t.Errorf("TotalSpins = %d, want 42", stats.TotalSpins)
	}
	if stats.DistinctWinSymbols != 1 {
		t.Errorf("DistinctWinSymbols = %d, want 1", stats.DistinctWinSymbols)
	}
	if stats.AchievementsUnlocked != 2 {
		t.Errorf("AchievementsUnlocked = %d, want 2", stats.AchievementsUnlocked)
	}
	if stats.AchievementsTotal != 16 {
		t.Errorf("AchievementsTotal = %d, want 16", stats.AchievementsTotal)
	}
}
