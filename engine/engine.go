package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// Store is the durable snapshot store behind the engine. Implementations
// live in the store packages; the engine only sees this contract.
type Store interface {
	// Save persists the snapshot (write-through, called after every mutation)
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns the persisted snapshot, or nil when none exists
	Load(ctx context.Context) (*Snapshot, error)
	// Clear removes the persisted snapshot
	Clear(ctx context.Context) error
}

// Engine owns the GameState and applies every rule of the machine:
// ledger transfers, spin resolution, XP/levels, achievements, bonuses and
// persistence. All operations are synchronous and atomic; on error the
// state is left untouched.
type Engine struct {
	mu    sync.Mutex
	state *GameState
	rules Rules

	phase       SpinPhase
	pendingSpin *spinTicket

	store     Store
	listeners []Listener

	pendingEvents []Event
	// errorEvents publish even when the mutation fails, still after unlock
	errorEvents []Event

	logger zerolog.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// Options configures a new Engine
type Options struct {
	Rules  Rules
	Store  Store
	Logger zerolog.Logger
	// Seed seeds the symbol draw; 0 seeds from the wall clock
	Seed int64
	// Now overrides the clock, used by tests and the bonus ticker
	Now func() time.Time
}

// New creates an Engine with a fresh default state
func New(opts Options) *Engine {
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		state:  NewGameState(opts.Rules),
		rules:  opts.Rules,
		phase:  PhaseIdle,
		store:  opts.Store,
		logger: opts.Logger.With().Str("component", "engine").Logger(),
		rng:    rand.New(rand.NewSource(seed)),
		now:    now,
	}
}

// Rules returns the active rule set
func (e *Engine) Rules() Rules {
	return e.rules
}

// State returns a copy of the current game state
func (e *Engine) State() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Hydrate loads the persisted snapshot into the engine. A missing snapshot
// leaves the default state in place; a store failure is logged and the
// session continues in-memory only.
func (e *Engine) Hydrate(ctx context.Context) {
	if e.store == nil {
		return
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to load saved state, starting fresh")
		return
	}
	if snap == nil {
		e.logger.Debug().Msg("No saved state found")
		return
	}

	e.mu.Lock()
	e.state = snap.apply(e.rules)
	e.mu.Unlock()

	e.logger.Info().
		Int64("balance", snap.Balance).
		Int("level", e.State().PlayerLevel).
		Msg("Restored saved state")
}

// Reset discards all progress and restores the pristine default state
func (e *Engine) Reset(ctx context.Context) error {
	return e.mutate(ctx, func() error {
		if e.phase != PhaseIdle {
			return errors.New(errors.ErrSpinInProgress, "cannot reset while a spin is in flight")
		}
		e.state = NewGameState(e.rules)
		e.balanceChanged()
		e.notify(SeveritySuccess, "Game reset to defaults")
		return nil
	})
}

// SetBet sets the wager, requiring minBet <= amount <= min(maxBet, balance)
func (e *Engine) SetBet(ctx context.Context, amount int64) error {
	return e.mutate(ctx, func() error {
		if amount < e.rules.MinBet || amount > e.state.maxBet(e.rules) {
			return errors.Newf(errors.ErrInvalidAmount,
				"bet must be between %d and %d", e.rules.MinBet, e.state.maxBet(e.rules))
		}
		e.state.BetAmount = amount
		return nil
	})
}

// IncreaseBet raises the wager by one within the allowed range
func (e *Engine) IncreaseBet(ctx context.Context) (int64, error) {
	var bet int64
	err := e.mutate(ctx, func() error {
		if e.state.BetAmount < e.state.maxBet(e.rules) {
			e.state.BetAmount++
		}
		bet = e.state.BetAmount
		return nil
	})
	return bet, err
}

// DecreaseBet lowers the wager by one down to the minimum
func (e *Engine) DecreaseBet(ctx context.Context) (int64, error) {
	var bet int64
	err := e.mutate(ctx, func() error {
		if e.state.BetAmount > e.rules.MinBet {
			e.state.BetAmount--
		}
		bet = e.state.BetAmount
		return nil
	})
	return bet, err
}

// QuickBet sets the wager to amount clamped into the allowed range,
// raising an informational notification when the request was capped
func (e *Engine) QuickBet(ctx context.Context, amount int64) (int64, error) {
	var bet int64
	err := e.mutate(ctx, func() error {
		max := e.state.maxBet(e.rules)
		if max < e.rules.MinBet {
			return errors.New(errors.ErrInsufficientFunds, "not enough balance for this bet")
		}
		final := amount
		if final > max {
			final = max
			e.notify(SeverityInfo, fmt.Sprintf("Bet capped at %d (max available)", final))
		}
		if final < e.rules.MinBet {
			return errors.Newf(errors.ErrInvalidAmount, "bet must be at least %d", e.rules.MinBet)
		}
		e.state.BetAmount = final
		bet = final
		return nil
	})
	return bet, err
}

// mutate runs fn under the engine lock and, when it succeeds, commits:
// the snapshot is written through to the store and the queued events are
// published to listeners outside the lock. On error nothing is persisted
// and queued events are discarded, except error-queue events, which still
// publish after unlock. Listeners always run without the lock held.
func (e *Engine) mutate(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	err := fn()

	var snap *Snapshot
	events := e.errorEvents
	listeners := e.listeners
	if err == nil {
		snap = e.captureLocked()
		events = append(events, e.pendingEvents...)
	}
	e.pendingEvents = nil
	e.errorEvents = nil
	e.mu.Unlock()

	e.persist(ctx, snap)
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
	return err
}

// persist writes the snapshot through to the store. Failures degrade to
// in-memory operation for the session; gameplay is never interrupted.
func (e *Engine) persist(ctx context.Context, snap *Snapshot) {
	if e.store == nil || snap == nil {
		return
	}
	if err := e.store.Save(ctx, snap); err != nil {
		e.logger.Error().Err(err).Msg("Failed to save state, continuing in-memory")
	}
}
