package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// BonusKind identifies one of the two cooldown-gated bonuses
type BonusKind string

const (
	BonusDaily  BonusKind = "daily"
	BonusHourly BonusKind = "hourly"
)

// BonusClaim is one entry of the capped claim history, most recent first
type BonusClaim struct {
	Date   time.Time `json:"date"`
	Amount int64     `json:"amount"`
	Kind   BonusKind `json:"type"`
}

// BonusStatus reports one bonus cooldown for display
type BonusStatus struct {
	Kind      BonusKind     `json:"kind"`
	Amount    int64         `json:"amount"`
	Ready     bool          `json:"ready"`
	Remaining time.Duration `json:"remaining"`
	Countdown string        `json:"countdown"`
}

// bonusTerms resolves period and amount for a kind
func (e *Engine) bonusTerms(kind BonusKind) (time.Duration, int64, error) {
	switch kind {
	case BonusDaily:
		return e.rules.DailyBonusPeriod, e.rules.DailyBonusAmount, nil
	case BonusHourly:
		return e.rules.HourlyBonusPeriod, e.rules.HourlyBonusAmount, nil
	default:
		return 0, 0, errors.Newf(errors.ErrInvalidRequest, "unknown bonus kind %q", kind)
	}
}

// lastClaim returns the last claim time for a kind, nil when never claimed
func (s *GameState) lastClaim(kind BonusKind) *time.Time {
	if kind == BonusDaily {
		return s.LastDailyBonusClaim
	}
	return s.LastHourlyBonusClaim
}

// BonusReady reports whether the bonus can be claimed at the given instant.
// A bonus that was never claimed is always ready.
func (e *Engine) BonusReady(kind BonusKind, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ready, _ := e.bonusReadiness(kind, now)
	return ready
}

// bonusReadiness computes readiness and remaining cooldown.
// Callers must hold e.mu.
func (e *Engine) bonusReadiness(kind BonusKind, now time.Time) (bool, time.Duration) {
	period, _, err := e.bonusTerms(kind)
	if err != nil {
		return false, 0
	}
	last := e.state.lastClaim(kind)
	if last == nil {
		return true, 0
	}
	elapsed := now.Sub(*last)
	if elapsed >= period {
		return true, 0
	}
	return false, period - elapsed
}

// Bonuses reports both cooldowns for display. This is pure recomputation,
// driven by the facade's one-second tick; no state changes here.
func (e *Engine) Bonuses(now time.Time) []BonusStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]BonusStatus, 0, 2)
	for _, kind := range []BonusKind{BonusDaily, BonusHourly} {
		_, amount, _ := e.bonusTerms(kind)
		ready, remaining := e.bonusReadiness(kind, now)
		out = append(out, BonusStatus{
			Kind:      kind,
			Amount:    amount,
			Ready:     ready,
			Remaining: remaining,
			Countdown: FormatCountdown(remaining),
		})
	}
	return out
}

// ClaimBonus credits the bonus into the banked account, stamps the cooldown
// and prepends the claim to the capped history. Claiming before the cooldown
// elapses fails with BonusNotReady and leaves the state unchanged.
func (e *Engine) ClaimBonus(ctx context.Context, kind BonusKind) error {
	return e.mutate(ctx, func() error {
		_, amount, err := e.bonusTerms(kind)
		if err != nil {
			return err
		}

		now := e.now()
		ready, remaining := e.bonusReadiness(kind, now)
		if !ready {
			return errors.Newf(errors.ErrBonusNotReady,
				"%s bonus available in %s", kind, FormatCountdown(remaining))
		}

		e.credit(CurrencyAccount, amount)
		stamp := now
		if kind == BonusDaily {
			e.state.LastDailyBonusClaim = &stamp
		} else {
			e.state.LastHourlyBonusClaim = &stamp
		}

		e.state.BonusHistory = append([]BonusClaim{{Date: now, Amount: amount, Kind: kind}}, e.state.BonusHistory...)
		if len(e.state.BonusHistory) > e.rules.BonusHistoryLimit {
			e.state.BonusHistory = e.state.BonusHistory[:e.rules.BonusHistoryLimit]
		}

		e.notify(SeveritySuccess, fmt.Sprintf("%d bonus credited to your account!", amount))
		return nil
	})
}

// BonusHistory returns the claim history, most recent first
func (e *Engine) BonusHistory() []BonusClaim {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]BonusClaim, len(e.state.BonusHistory))
	copy(out, e.state.BonusHistory)
	return out
}

// FormatCountdown renders a remaining duration as HH:MM:SS
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
