package engine

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Stats summarizes the session for the stats panel
type Stats struct {
	Balance              int64           `json:"balance"`
	AccountBalance       int64           `json:"accountBalance"`
	TotalSpins           int64           `json:"totalSpins"`
	TotalWinnings        int64           `json:"totalWins"`
	TotalWagered         int64           `json:"totalWagered"`
	LastPayout           int64           `json:"lastWin"`
	ConsecutiveWins      int64           `json:"consecutiveWins"`
	PlayerLevel          int             `json:"playerLevel"`
	TotalXP              int64           `json:"totalXP"`
	WonXP                int64           `json:"wonXP"`
	DistinctWinSymbols   int             `json:"distinctWinSymbols"`
	AchievementsUnlocked int             `json:"achievementsUnlocked"`
	AchievementsTotal    int             `json:"achievementsTotal"`
	// ReturnToPlayer is total winnings over total wagered, zero until the
	// first wager
	ReturnToPlayer decimal.Decimal `json:"returnToPlayer"`
}

// Stats computes the current session statistics
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	unlocked := lo.CountBy(lo.Values(s.Achievements), func(a *Achievement) bool {
		return a.Unlocked
	})

	rtp := decimal.Zero
	if s.TotalWagered > 0 {
		rtp = decimal.NewFromInt(s.TotalWinnings).
			Div(decimal.NewFromInt(s.TotalWagered)).
			Round(4)
	}

	return Stats{
		Balance:              s.Balance,
		AccountBalance:       s.AccountBalance,
		TotalSpins:           s.TotalSpins,
		TotalWinnings:        s.TotalWinnings,
		TotalWagered:         s.TotalWagered,
		LastPayout:           s.LastPayout,
		ConsecutiveWins:      s.ConsecutiveWins,
		PlayerLevel:          s.PlayerLevel,
		TotalXP:              s.TotalXP,
		WonXP:                s.WonXP,
		DistinctWinSymbols:   len(s.WonSymbols),
		AchievementsUnlocked: unlocked,
		AchievementsTotal:    len(s.Achievements),
		ReturnToPlayer:       rtp,
	}
}

// FormatAmount renders an amount compactly: 950, 1.5k, 2Mio
func FormatAmount(amount int64) string {
	switch {
	case amount >= 1_000_000:
		return trimZero(float64(amount)/1_000_000) + "Mio"
	case amount >= 1_000:
		return trimZero(float64(amount)/1_000) + "k"
	default:
		return fmt.Sprintf("%d", amount)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
