package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// SpinPhase is the spin lifecycle state machine. The economy moves
// Betting -> Settled atomically; Resolving only exists so the facade can
// stagger reel visuals between the debit and the resolution.
type SpinPhase string

const (
	PhaseIdle      SpinPhase = "idle"
	PhaseBetting   SpinPhase = "betting"
	PhaseResolving SpinPhase = "resolving"
	PhaseSettled   SpinPhase = "settled"
)

// spinTicket is the in-flight spin between BeginSpin and SettleSpin
type spinTicket struct {
	id      string
	bet     int64
	symbols [ReelCount]Symbol
	started time.Time
}

// SpinStart describes a spin that has been debited and drawn but not yet
// settled. SettleAt is presentation pacing only.
type SpinStart struct {
	SpinID   string            `json:"spinId"`
	Bet      int64             `json:"bet"`
	Symbols  [ReelCount]Symbol `json:"symbols"`
	Balance  int64             `json:"balance"`
	SettleAt time.Time         `json:"settleAt"`
}

// SpinOutcome is the settled result of a spin
type SpinOutcome struct {
	SpinID          string            `json:"spinId"`
	Bet             int64             `json:"bet"`
	Symbols         [ReelCount]Symbol `json:"symbols"`
	Payout          int64             `json:"payout"`
	Triple          bool              `json:"triple"`
	TripleSymbol    Symbol            `json:"tripleSymbol,omitempty"`
	Balance         int64             `json:"balance"`
	ConsecutiveWins int64             `json:"consecutiveWins"`
	Level           int               `json:"level"`
}

// resolvePayout computes the payout for a draw: three identical symbols pay
// bet x the symbol multiplier, any pair pays bet x the pair multiplier,
// anything else pays nothing. Pure; the draw carries all the randomness.
func resolvePayout(rules Rules, bet int64, symbols [ReelCount]Symbol) (payout int64, triple bool) {
	if symbols[0] == symbols[1] && symbols[1] == symbols[2] {
		return bet * symbols[0].Multiplier(), true
	}
	if symbols[0] == symbols[1] || symbols[1] == symbols[2] || symbols[0] == symbols[2] {
		return bet * rules.PairMultiplier, false
	}
	return 0, false
}

// BeginSpin starts a spin: rejects re-entrant requests, debits the wager,
// counts the spin, awards the flat spin XP and draws the reels. The draw is
// fixed here; SettleSpin only applies its economic consequences.
func (e *Engine) BeginSpin(ctx context.Context) (*SpinStart, error) {
	var start *SpinStart
	err := e.mutate(ctx, func() error {
		if e.phase != PhaseIdle {
			return errors.New(errors.ErrSpinInProgress, "a spin is already in flight")
		}

		bet := e.state.BetAmount
		e.phase = PhaseBetting
		if err := e.placeBet(bet); err != nil {
			e.phase = PhaseIdle
			return err
		}

		e.state.TotalSpins++
		e.awardXP(e.rules.XPPerSpin, xpSourceSpin)

		ticket := &spinTicket{
			id:      uuid.New().String(),
			bet:     bet,
			symbols: drawSymbols(e.rng),
			started: e.now(),
		}
		e.pendingSpin = ticket
		e.phase = PhaseResolving

		e.queue(Event{Type: EventSpinStart, SpinID: ticket.id, Amount: bet})

		start = &SpinStart{
			SpinID:   ticket.id,
			Bet:      ticket.bet,
			Symbols:  ticket.symbols,
			Balance:  e.state.Balance,
			SettleAt: ticket.started.Add(e.rules.SettleDelay),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return start, nil
}

// SettleSpin resolves the in-flight spin: credits the payout, updates the
// streak and winnings counters, awards win XP and runs the achievement
// checks. Returns the settled outcome.
func (e *Engine) SettleSpin(ctx context.Context) (*SpinOutcome, error) {
	var outcome *SpinOutcome
	err := e.mutate(ctx, func() error {
		if e.phase != PhaseResolving || e.pendingSpin == nil {
			return errors.New(errors.ErrInvalidRequest, "no spin to settle")
		}

		ticket := e.pendingSpin
		payout, triple := resolvePayout(e.rules, ticket.bet, ticket.symbols)

		if payout > 0 {
			e.credit(CurrencyBalance, payout)
			e.state.LastPayout = payout
			e.state.TotalWinnings += payout
			e.state.ConsecutiveWins++
			if triple {
				e.state.WonSymbols[ticket.symbols[0]] = struct{}{}
			}
			e.awardXP(payout, xpSourceWin)

			e.queue(Event{Type: EventWinResolved, SpinID: ticket.id})
			e.queue(Event{Type: EventPayoutResolved, SpinID: ticket.id, Amount: payout})
			e.notify(SeveritySuccess, fmt.Sprintf("You won %s!", FormatAmount(payout)))

			e.checkAchievements()
			if triple {
				e.checkSymbolAchievements(ticket.symbols[0])
			}
		} else {
			e.state.LastPayout = 0
			e.state.ConsecutiveWins = 0
			e.queue(Event{Type: EventPayoutResolved, SpinID: ticket.id, Amount: 0})
		}

		e.state.clampBet(e.rules)
		e.pendingSpin = nil
		e.phase = PhaseIdle

		outcome = &SpinOutcome{
			SpinID:          ticket.id,
			Bet:             ticket.bet,
			Symbols:         ticket.symbols,
			Payout:          payout,
			Triple:          triple,
			Balance:         e.state.Balance,
			ConsecutiveWins: e.state.ConsecutiveWins,
			Level:           e.state.PlayerLevel,
		}
		if triple {
			outcome.TripleSymbol = ticket.symbols[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Spin runs a full spin synchronously (begin + settle). The facade uses
// BeginSpin/SettleSpin to pace reel visuals; the CLI and auto-spin use this.
func (e *Engine) Spin(ctx context.Context) (*SpinOutcome, error) {
	if _, err := e.BeginSpin(ctx); err != nil {
		return nil, err
	}
	return e.SettleSpin(ctx)
}

// Phase returns the current spin lifecycle phase
func (e *Engine) Phase() SpinPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}
