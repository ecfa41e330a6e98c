package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// AutoSpinner re-runs spins on a fixed delay until stopped or the balance
// no longer covers the wager. The active flag is checked when the timer
// fires, so Stop always wins over an already-scheduled spin.
//
// The spinner owns the context its spins run and persist under. Caller
// contexts (HTTP requests in particular) are dead long before a scheduled
// spin fires.
type AutoSpinner struct {
	engine *Engine
	logger zerolog.Logger

	mu     sync.Mutex
	active bool
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewAutoSpinner creates an auto-spin controller for the engine
func NewAutoSpinner(engine *Engine, logger zerolog.Logger) *AutoSpinner {
	return &AutoSpinner{
		engine: engine,
		logger: logger.With().Str("component", "autospin").Logger(),
	}
}

// Active reports whether auto-spin is currently enabled
func (a *AutoSpinner) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Start enables auto-spin and runs the first spin immediately.
// Fails when the balance does not cover the wager.
func (a *AutoSpinner) Start() error {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return nil
	}
	state := a.engine.State()
	if state.Balance < state.BetAmount {
		a.mu.Unlock()
		return errors.New(errors.ErrInsufficientFunds, "not enough balance for auto-spin")
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.active = true
	a.cancel = cancel
	a.mu.Unlock()

	a.logger.Info().Msg("Auto-spin started")
	a.fire(ctx)
	return nil
}

// Stop disables auto-spin. Any scheduled spin is cancelled; a timer that
// already fired re-checks the flag and bails out.
func (a *AutoSpinner) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		return
	}
	a.active = false
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.logger.Info().Msg("Auto-spin stopped")
}

// fire runs one spin and schedules the next while conditions hold
func (a *AutoSpinner) fire(ctx context.Context) {
	a.mu.Lock()
	if !a.active || ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	outcome, err := a.engine.Spin(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Auto-spin halted")
		a.Stop()
		return
	}

	state := a.engine.State()
	if state.Balance < state.BetAmount {
		a.logger.Info().Int64("balance", state.Balance).Msg("Auto-spin out of funds")
		a.Stop()
		return
	}

	a.logger.Debug().
		Str("spin_id", outcome.SpinID).
		Int64("payout", outcome.Payout).
		Msg("Auto-spin settled, scheduling next")

	a.mu.Lock()
	if a.active {
		a.timer = time.AfterFunc(a.engine.Rules().AutoSpinDelay, func() {
			a.fire(ctx)
		})
	}
	a.mu.Unlock()
}
