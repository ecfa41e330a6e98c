package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// StorageKey is the fixed identifier the snapshot is stored under
const StorageKey = "slotMachineData"

// BackupVersion tags exported backup documents
const BackupVersion = "2.0"

// Snapshot is the persisted form of a GameState. Field names follow the
// save-document format; timestamps are epoch milliseconds.
type Snapshot struct {
	Balance              int64                     `json:"balance" mapstructure:"balance"`
	AccountBalance       int64                     `json:"accountBalance" mapstructure:"accountBalance"`
	BetAmount            int64                     `json:"betAmount" mapstructure:"betAmount"`
	TotalWins            int64                     `json:"totalWins" mapstructure:"totalWins"`
	LastWin              int64                     `json:"lastWin" mapstructure:"lastWin"`
	TotalWagered         int64                     `json:"totalWagered,omitempty" mapstructure:"totalWagered"`
	LastBonusClaim       *int64                    `json:"lastBonusClaim" mapstructure:"lastBonusClaim"`
	LastHourlyBonusClaim *int64                    `json:"lastHourlyBonusClaim" mapstructure:"lastHourlyBonusClaim"`
	BonusHistory         []BonusClaimDoc           `json:"bonusHistory" mapstructure:"bonusHistory"`
	PlayerLevel          int                       `json:"playerLevel" mapstructure:"playerLevel"`
	TotalXP              int64                     `json:"totalXP" mapstructure:"totalXP"`
	TotalSpins           int64                     `json:"totalSpins" mapstructure:"totalSpins"`
	WonXP                int64                     `json:"wonXP" mapstructure:"wonXP"`
	Achievements         map[string]AchievementDoc `json:"achievements" mapstructure:"achievements"`
	ConsecutiveWins      int64                     `json:"consecutiveWins" mapstructure:"consecutiveWins"`
	WonSymbols           []string                  `json:"wonSymbols" mapstructure:"wonSymbols"`
	Timestamp            int64                     `json:"timestamp" mapstructure:"timestamp"`
	Version              string                    `json:"version,omitempty" mapstructure:"version"`
}

// BonusClaimDoc is the persisted form of one bonus history entry
type BonusClaimDoc struct {
	Date   string `json:"date" mapstructure:"date"`
	Amount int64  `json:"amount" mapstructure:"amount"`
	Kind   string `json:"type" mapstructure:"type"`
}

// AchievementDoc is the persisted form of one achievement entry
type AchievementDoc struct {
	Unlocked bool  `json:"unlocked" mapstructure:"unlocked"`
	Reward   int64 `json:"reward" mapstructure:"reward"`
}

// captureLocked serializes the current state. Callers must hold e.mu.
func (e *Engine) captureLocked() *Snapshot {
	s := e.state

	symbols := make([]string, 0, len(s.WonSymbols))
	for sym := range s.WonSymbols {
		symbols = append(symbols, string(sym))
	}
	sort.Strings(symbols)

	achievements := make(map[string]AchievementDoc, len(s.Achievements))
	for id, ach := range s.Achievements {
		achievements[string(id)] = AchievementDoc{Unlocked: ach.Unlocked, Reward: ach.Reward}
	}

	history := make([]BonusClaimDoc, len(s.BonusHistory))
	for i, claim := range s.BonusHistory {
		history[i] = BonusClaimDoc{
			Date:   claim.Date.UTC().Format(time.RFC3339),
			Amount: claim.Amount,
			Kind:   string(claim.Kind),
		}
	}

	return &Snapshot{
		Balance:              s.Balance,
		AccountBalance:       s.AccountBalance,
		BetAmount:            s.BetAmount,
		TotalWins:            s.TotalWinnings,
		LastWin:              s.LastPayout,
		TotalWagered:         s.TotalWagered,
		LastBonusClaim:       timeToMillis(s.LastDailyBonusClaim),
		LastHourlyBonusClaim: timeToMillis(s.LastHourlyBonusClaim),
		BonusHistory:         history,
		PlayerLevel:          s.PlayerLevel,
		TotalXP:              s.TotalXP,
		TotalSpins:           s.TotalSpins,
		WonXP:                s.WonXP,
		Achievements:         achievements,
		ConsecutiveWins:      s.ConsecutiveWins,
		WonSymbols:           symbols,
		Timestamp:            e.now().UnixMilli(),
	}
}

// Snapshot captures the full game state plus a capture timestamp
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.captureLocked()
}

// apply merges the snapshot into a default GameState. Missing or malformed
// fields keep their defaults; the level is recomputed from total XP so the
// level invariant holds even for hand-edited documents.
func (snap *Snapshot) apply(rules Rules) *GameState {
	s := NewGameState(rules)

	s.Balance = nonNegative(snap.Balance)
	s.AccountBalance = nonNegative(snap.AccountBalance)
	if snap.BetAmount > 0 {
		s.BetAmount = snap.BetAmount
	}
	s.TotalWinnings = nonNegative(snap.TotalWins)
	s.LastPayout = nonNegative(snap.LastWin)
	s.TotalWagered = nonNegative(snap.TotalWagered)
	s.TotalSpins = nonNegative(snap.TotalSpins)
	s.TotalXP = nonNegative(snap.TotalXP)
	s.WonXP = nonNegative(snap.WonXP)
	if s.WonXP > s.TotalXP {
		s.WonXP = s.TotalXP
	}
	s.ConsecutiveWins = nonNegative(snap.ConsecutiveWins)
	s.PlayerLevel = LevelForXP(s.TotalXP)

	s.LastDailyBonusClaim = millisToTime(snap.LastBonusClaim)
	s.LastHourlyBonusClaim = millisToTime(snap.LastHourlyBonusClaim)

	for _, doc := range snap.BonusHistory {
		claim := BonusClaim{Amount: doc.Amount, Kind: BonusKind(doc.Kind)}
		if t, err := time.Parse(time.RFC3339, doc.Date); err == nil {
			claim.Date = t
		}
		s.BonusHistory = append(s.BonusHistory, claim)
	}
	if len(s.BonusHistory) > rules.BonusHistoryLimit {
		s.BonusHistory = s.BonusHistory[:rules.BonusHistoryLimit]
	}

	// Unlock flags merge over the catalog; rewards stay catalog-fixed and
	// unknown IDs are dropped.
	for id, doc := range snap.Achievements {
		if ach, ok := s.Achievements[AchievementID(id)]; ok {
			ach.Unlocked = doc.Unlocked
		}
	}

	for _, raw := range snap.WonSymbols {
		if sym, ok := ParseSymbol(raw); ok {
			s.WonSymbols[sym] = struct{}{}
		}
	}

	s.clampBet(rules)
	return s
}

// DecodeSnapshot decodes a save document leniently: present fields are
// merged over defaults, malformed fields keep their defaults. Only a
// document that is not a JSON object fails.
func DecodeSnapshot(data []byte, rules Rules) (*Snapshot, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	return decodeSnapshotMap(raw, rules), nil
}

// decodeSnapshotMap merges raw fields over a default-valued snapshot.
// Decode errors on individual fields are deliberately ignored.
func decodeSnapshotMap(raw map[string]interface{}, rules Rules) *Snapshot {
	snap := defaultSnapshot(rules)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           snap,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return snap
	}
	_ = decoder.Decode(raw)
	return snap
}

// defaultSnapshot mirrors the default GameState in document form
func defaultSnapshot(rules Rules) *Snapshot {
	return &Snapshot{
		Balance:     rules.StartingBalance,
		BetAmount:   rules.StartingBet,
		PlayerLevel: 1,
	}
}

// ParseBackup validates and decodes an imported backup document. A document
// carrying neither a version tag nor a balance field is rejected; anything
// else restores leniently with defaults for missing fields.
func ParseBackup(data []byte, rules Rules) (*Snapshot, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidBackup, "backup is not valid JSON")
	}
	_, hasVersion := raw["version"]
	_, hasBalance := raw["balance"]
	if !hasVersion && !hasBalance {
		return nil, errors.New(errors.ErrInvalidBackup, "backup file is missing version and balance")
	}
	return decodeSnapshotMap(raw, rules), nil
}

// ExportBackup renders the current state as a downloadable backup document
// and suggests the canonical file name for it
func (e *Engine) ExportBackup() ([]byte, string, error) {
	snap := e.Snapshot()
	snap.Version = BackupVersion

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(err, errors.ErrInternalServerError, "failed to serialize backup")
	}
	return data, BackupFilename(e.now()), nil
}

// BackupFilename returns slot-machine-backup-<ISO-date>.json
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("slot-machine-backup-%s.json", t.UTC().Format("2006-01-02"))
}

// ImportBackup replaces the live state with the backup contents.
// Rejected documents leave the state untouched.
func (e *Engine) ImportBackup(ctx context.Context, data []byte) error {
	snap, err := ParseBackup(data, e.rules)
	if err != nil {
		return err
	}
	return e.mutate(ctx, func() error {
		if e.phase != PhaseIdle {
			return errors.New(errors.ErrSpinInProgress, "cannot restore while a spin is in flight")
		}
		e.state = snap.apply(e.rules)
		e.balanceChanged()
		e.notify(SeveritySuccess, "Backup restored successfully")
		return nil
	})
}

func timeToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func millisToTime(ms *int64) *time.Time {
	if ms == nil || *ms <= 0 {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
