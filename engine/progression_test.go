package engine

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 282},
		{4, 519},
		{5, 800},
		{10, 2700},
		{20, 8281},
	}

	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestXPForLevelStrictlyIncreasing(t *testing.T) {
	prev := XPForLevel(1)
	for level := 2; level <= 60; level++ {
		cur := XPForLevel(level)
		if cur <= prev {
			t.Fatalf("XPForLevel(%d) = %d not greater than XPForLevel(%d) = %d",
				level, cur, level-1, prev)
		}
		prev = cur
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		totalXP int64
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{281, 2},
		{282, 3},
		{800, 5},
		{2700, 10},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.totalXP); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}

func TestLevelForXPExtremeValues(t *testing.T) {
	// hand-edited save documents can carry any value here
	for _, xp := range []int64{1 << 30, 1 << 40, 1 << 50, math.MaxInt64} {
		level := LevelForXP(xp)
		if level < 2 {
			t.Fatalf("LevelForXP(%d) = %d, want a high level", xp, level)
		}
		if cost := XPForLevel(level); cost > xp {
			t.Errorf("LevelForXP(%d) = %d, but that level costs %d", xp, level, cost)
		}
		if next := XPForLevel(level + 1); next > XPForLevel(level) && next <= xp {
			t.Errorf("LevelForXP(%d) = %d, but level %d is already covered", xp, level, level+1)
		}
	}
}

func TestLevelForXPMatchesCurveWalk(t *testing.T) {
	for _, xp := range []int64{1, 99, 100, 5000, 123456, 98765432} {
		walked := 1
		for xp >= XPForLevel(walked+1) {
			walked++
		}
		if got := LevelForXP(xp); got != walked {
			t.Errorf("LevelForXP(%d) = %d, want %d", xp, got, walked)
		}
	}
}

func TestAwardXPSingleLevel(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	e.mu.Lock()
	e.awardXP(100, xpSourceWin)
	e.mu.Unlock()

	state := e.State()
	if state.PlayerLevel != 2 {
		t.Errorf("PlayerLevel = %d, want 2", state.PlayerLevel)
	}
	if state.TotalXP != 100 {
		t.Errorf("TotalXP = %d, want 100", state.TotalXP)
	}
	if state.WonXP != 100 {
		t.Errorf("WonXP = %d, want 100", state.WonXP)
	}
}

func TestAwardXPMultiLevelJump(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	// 800 XP covers levels 2 through 5 in one award
	e.mu.Lock()
	e.awardXP(800, xpSourceWin)
	levelUps := 0
	for _, ev := range e.pendingEvents {
		if ev.Type == EventLevelUp {
			levelUps++
		}
	}
	e.mu.Unlock()

	state := e.State()
	if state.PlayerLevel != 5 {
		t.Fatalf("PlayerLevel = %d, want 5", state.PlayerLevel)
	}
	if levelUps != 4 {
		t.Errorf("level_up events = %d, want 4", levelUps)
	}
	if !state.Achievements[AchLevel5].Unlocked {
		t.Error("level-5 achievement not unlocked after jump to level 5")
	}
	if state.AccountBalance != 50 {
		t.Errorf("AccountBalance = %d, want 50 (level-5 reward)", state.AccountBalance)
	}
}

func TestAwardXPSpinSourceDoesNotCountAsWonXP(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	e.mu.Lock()
	e.awardXP(10, xpSourceSpin)
	e.mu.Unlock()

	state := e.State()
	if state.TotalXP != 10 {
		t.Errorf("TotalXP = %d, want 10", state.TotalXP)
	}
	if state.WonXP != 0 {
		t.Errorf("WonXP = %d, want 0", state.WonXP)
	}
}

func TestProgress(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	e.mu.Lock()
	e.awardXP(150, xpSourceWin)
	e.mu.Unlock()

	p := e.Progress()
	if p.Level != 2 {
		t.Errorf("Level = %d, want 2", p.Level)
	}
	if p.XPIntoLevel != 50 {
		t.Errorf("XPIntoLevel = %d, want 50", p.XPIntoLevel)
	}
	if p.NextLevelXP != 282 {
		t.Errorf("NextLevelXP = %d, want 282", p.NextLevelXP)
	}
	if p.XPForNext != 182 {
		t.Errorf("XPForNext = %d, want 182", p.XPForNext)
	}
}
