package engine

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

func TestExportImportRoundTrip(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})

	e.mu.Lock()
	e.state.Balance = 750
	e.state.AccountBalance = 1200
	e.state.BetAmount = 25
	e.state.TotalWinnings = 5400
	e.state.LastPayout = 250
	e.state.TotalWagered = 6000
	e.state.TotalSpins = 320
	e.state.ConsecutiveWins = 3
	e.state.TotalXP = 5720
	e.state.WonXP = 5400
	e.state.PlayerLevel = LevelForXP(5720)
	e.state.WonSymbols[SymbolStar] = struct{}{}
	e.state.WonSymbols[SymbolCherry] = struct{}{}
	e.state.Achievements[AchFirstWin].Unlocked = true
	e.state.Achievements[AchBigWinner].Unlocked = true
	claimTime := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	e.state.LastDailyBonusClaim = &claimTime
	e.state.BonusHistory = []BonusClaim{{Date: claimTime, Amount: 100, Kind: BonusDaily}}
	e.mu.Unlock()

	data, filename, err := e.ExportBackup()
	if err != nil {
		t.Fatalf("ExportBackup: %v", err)
	}
	if filename == "" {
		t.Error("export suggested empty filename")
	}

	// exported document carries the version tag
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc["version"] != BackupVersion {
		t.Errorf("version = %v, want %s", doc["version"], BackupVersion)
	}

	restored := New(Options{Logger: zerolog.Nop(), Seed: 1})
	if err := restored.ImportBackup(context.Background(), data); err != nil {
		t.Fatalf("ImportBackup: %v", err)
	}

	want := e.State()
	got := restored.State()
	if got.Balance != want.Balance ||
		got.AccountBalance != want.AccountBalance ||
		got.BetAmount != want.BetAmount ||
		got.TotalWinnings != want.TotalWinnings ||
		got.LastPayout != want.LastPayout ||
		got.TotalWagered != want.TotalWagered ||
		got.TotalSpins != want.TotalSpins ||
		got.ConsecutiveWins != want.ConsecutiveWins ||
		got.TotalXP != want.TotalXP ||
		got.WonXP != want.WonXP ||
		got.PlayerLevel != want.PlayerLevel {
		t.Errorf("restored state differs:\ngot  %+v\nwant %+v", got, want)
	}
	if len(got.WonSymbols) != 2 {
		t.Errorf("WonSymbols = %v, want star and cherry", got.WonSymbols)
	}
	if !got.Achievements[AchFirstWin].Unlocked || !got.Achievements[AchBigWinner].Unlocked {
		t.Error("unlock flags lost on round trip")
	}
	if got.Achievements[AchLevel20].Unlocked {
		t.Error("locked achievement became unlocked on round trip")
	}
	if got.LastDailyBonusClaim == nil || !got.LastDailyBonusClaim.Equal(claimTime) {
		t.Errorf("LastDailyBonusClaim = %v, want %v", got.LastDailyBonusClaim, claimTime)
	}
	if len(got.BonusHistory) != 1 || got.BonusHistory[0].Amount != 100 {
		t.Errorf("BonusHistory = %+v, want one daily claim of 100", got.BonusHistory)
	}
}

func TestParseBackupValidation(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"not json", "definitely not json", true},
		{"json array", "[1,2,3]", true},
		{"missing version and balance", `{"totalSpins": 5}`, true},
		{"version only", `{"version": "2.0"}`, false},
		{"balance only", `{"balance": 200}`, false},
		{"full document", `{"version": "2.0", "balance": 200, "totalXP": 300}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBackup([]byte(tt.data), rules)
			if tt.wantErr {
				if !errors.IsCode(err, errors.ErrInvalidBackup) {
					t.Fatalf("error = %v, want InvalidBackup", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeSnapshotLenient(t *testing.T) {
	rules := DefaultRules()

	// Numeric strings coerce; junk fields fall back to defaults.
	snap, err := DecodeSnapshot([]byte(`{"balance": "250", "totalXP": "junk", "playerLevel": 7}`), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if snap.Balance != 250 {
		t.Errorf("Balance = %d, want 250 (weakly typed)", snap.Balance)
	}
	if snap.TotalXP != 0 {
		t.Errorf("TotalXP = %d, want default 0 for malformed field", snap.TotalXP)
	}

	// A missing document section keeps every default.
	snap, err = DecodeSnapshot([]byte(`{}`), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot({}): %v", err)
	}
	if snap.Balance != rules.StartingBalance || snap.BetAmount != rules.StartingBet {
		t.Errorf("empty doc: balance=%d bet=%d, want %d/%d",
			snap.Balance, snap.BetAmount, rules.StartingBalance, rules.StartingBet)
	}
}

func TestApplyRecomputesLevelFromXP(t *testing.T) {
	rules := DefaultRules()
	snap, err := DecodeSnapshot([]byte(`{"balance": 100, "totalXP": 100, "playerLevel": 99}`), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	state := snap.apply(rules)
	if state.PlayerLevel != 2 {
		t.Errorf("PlayerLevel = %d, want 2 (recomputed from XP)", state.PlayerLevel)
	}
}

func TestApplyHandlesHugeXP(t *testing.T) {
	rules := DefaultRules()
	snap := &Snapshot{Balance: 100, TotalXP: math.MaxInt64, PlayerLevel: 3}
	state := snap.apply(rules)
	if state.PlayerLevel < 1000 {
		t.Errorf("PlayerLevel = %d, want the full recomputed level", state.PlayerLevel)
	}
	if cost := XPForLevel(state.PlayerLevel); cost > state.TotalXP {
		t.Errorf("level %d costs %d, above the restored XP %d", state.PlayerLevel, cost, state.TotalXP)
	}
}

func TestApplySanitizesNegatives(t *testing.T) {
	rules := DefaultRules()
	snap, err := DecodeSnapshot([]byte(`{"balance": -50, "totalWins": -1, "wonXP": 500, "totalXP": 100}`), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	state := snap.apply(rules)
	if state.Balance != 0 {
		t.Errorf("Balance = %d, want 0", state.Balance)
	}
	if state.TotalWinnings != 0 {
		t.Errorf("TotalWinnings = %d, want 0", state.TotalWinnings)
	}
	if state.WonXP != state.TotalXP {
		t.Errorf("WonXP = %d exceeds TotalXP = %d", state.WonXP, state.TotalXP)
	}
}

func TestApplyAcceptsEmojiWonSymbols(t *testing.T) {
	rules := DefaultRules()
	snap, err := DecodeSnapshot([]byte(`{"balance": 100, "wonSymbols": ["🍒", "star", "bogus"]}`), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	state := snap.apply(rules)
	if _, ok := state.WonSymbols[SymbolCherry]; !ok {
		t.Error("emoji cherry not recognized")
	}
	if _, ok := state.WonSymbols[SymbolStar]; !ok {
		t.Error("named star not recognized")
	}
	if len(state.WonSymbols) != 2 {
		t.Errorf("WonSymbols = %v, unknown entries should be dropped", state.WonSymbols)
	}
}

func TestApplyDropsUnknownAchievements(t *testing.T) {
	rules := DefaultRules()
	snap, err := DecodeSnapshot([]byte(
		`{"balance": 100, "achievements": {"first-win": {"unlocked": true, "reward": 9999}, "made-up": {"unlocked": true}}}`,
	), rules)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	state := snap.apply(rules)
	if !state.Achievements[AchFirstWin].Unlocked {
		t.Error("first-win unlock flag not restored")
	}
	// reward values are catalog-fixed, never taken from the document
	if state.Achievements[AchFirstWin].Reward != 10 {
		t.Errorf("first-win reward = %d, want catalog value 10", state.Achievements[AchFirstWin].Reward)
	}
	if _, ok := state.Achievements[AchievementID("made-up")]; ok {
		t.Error("unknown achievement ID survived restore")
	}
}

func TestImportBackupRejectedLeavesStateUntouched(t *testing.T) {
	e := New(Options{Logger: zerolog.Nop(), Seed: 1})
	before := e.State()

	err := e.ImportBackup(context.Background(), []byte(`{"totalSpins": 7}`))
	if !errors.IsCode(err, errors.ErrInvalidBackup) {
		t.Fatalf("error = %v, want InvalidBackup", err)
	}

	after := e.State()
	if after.Balance != before.Balance || after.TotalSpins != before.TotalSpins {
		t.Error("state changed after rejected import")
	}
}

func TestBackupFilename(t *testing.T) {
	ts := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	want := "slot-machine-backup-2026-08-28.json"
	if got := BackupFilename(ts); got != want {
		t.Errorf("BackupFilename = %q, want %q", got, want)
	}
}
