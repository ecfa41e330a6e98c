package engine

import (
	"time"
)

// GameState is the root aggregate of one machine session. It is owned by the
// Engine and mutated only through Engine operations; callers get copies.
type GameState struct {
	// Balance is the spendable currency, the only one that can be wagered
	Balance int64 `json:"balance"`
	// AccountBalance is the banked currency; rewards and bonuses pay into it
	AccountBalance int64 `json:"accountBalance"`
	// BetAmount is re-clamped whenever Balance shrinks below it
	BetAmount int64 `json:"betAmount"`

	TotalWinnings int64 `json:"totalWins"`
	LastPayout    int64 `json:"lastWin"`
	TotalWagered  int64 `json:"totalWagered"`
	TotalSpins    int64 `json:"totalSpins"`

	ConsecutiveWins int64               `json:"consecutiveWins"`
	WonSymbols      map[Symbol]struct{} `json:"-"`

	TotalXP     int64 `json:"totalXP"`
	WonXP       int64 `json:"wonXP"`
	PlayerLevel int   `json:"playerLevel"`

	Achievements map[AchievementID]*Achievement `json:"achievements"`

	LastDailyBonusClaim  *time.Time   `json:"lastBonusClaim,omitempty"`
	LastHourlyBonusClaim *time.Time   `json:"lastHourlyBonusClaim,omitempty"`
	BonusHistory         []BonusClaim `json:"bonusHistory"`
}

// NewGameState builds the default state for the given rules:
// fresh balance, all counters zero, every achievement locked.
func NewGameState(rules Rules) *GameState {
	return &GameState{
		Balance:      rules.StartingBalance,
		BetAmount:    rules.StartingBet,
		PlayerLevel:  1,
		WonSymbols:   make(map[Symbol]struct{}),
		Achievements: defaultAchievements(),
		BonusHistory: []BonusClaim{},
	}
}

// clampBet keeps BetAmount inside [minBet, min(maxBet, balance)].
// A balance below minBet leaves the bet at minBet; the spin guard
// rejects the wager in that case.
func (s *GameState) clampBet(rules Rules) {
	max := rules.MaxBet
	if s.Balance < max {
		max = s.Balance
	}
	if max < rules.MinBet {
		max = rules.MinBet
	}
	if s.BetAmount > max {
		s.BetAmount = max
	}
	if s.BetAmount < rules.MinBet {
		s.BetAmount = rules.MinBet
	}
}

// maxBet returns the largest wager currently allowed
func (s *GameState) maxBet(rules Rules) int64 {
	if s.Balance < rules.MaxBet {
		return s.Balance
	}
	return rules.MaxBet
}

// clone returns a deep copy safe to hand to callers
func (s *GameState) clone() *GameState {
	out := *s
	out.WonSymbols = make(map[Symbol]struct{}, len(s.WonSymbols))
	for sym := range s.WonSymbols {
		out.WonSymbols[sym] = struct{}{}
	}
	out.Achievements = make(map[AchievementID]*Achievement, len(s.Achievements))
	for id, ach := range s.Achievements {
		cp := *ach
		out.Achievements[id] = &cp
	}
	out.BonusHistory = make([]BonusClaim, len(s.BonusHistory))
	copy(out.BonusHistory, s.BonusHistory)
	if s.LastDailyBonusClaim != nil {
		t := *s.LastDailyBonusClaim
		out.LastDailyBonusClaim = &t
	}
	if s.LastHourlyBonusClaim != nil {
		t := *s.LastHourlyBonusClaim
		out.LastHourlyBonusClaim = &t
	}
	return &out
}
