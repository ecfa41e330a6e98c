package server

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

// BonusTicker recomputes bonus readiness once per second and pushes a
// bonus_ready event onto the feed when a cooldown elapses. Readiness is
// derived from claim timestamps; the tick is display-driving only.
type BonusTicker struct {
	game   *engine.Engine
	feed   *Feed
	logger zerolog.Logger
	cron   *cron.Cron
	ready  map[engine.BonusKind]bool
}

// NewBonusTicker creates a ticker over the given engine and feed
func NewBonusTicker(game *engine.Engine, feed *Feed, logger zerolog.Logger) *BonusTicker {
	return &BonusTicker{
		game:   game,
		feed:   feed,
		logger: logger.With().Str("component", "bonus_ticker").Logger(),
		cron:   cron.New(cron.WithSeconds()),
		ready:  make(map[engine.BonusKind]bool),
	}
}

// Start begins the one-second readiness tick
func (t *BonusTicker) Start() error {
	// Prime the transition map so bonuses that are already ready at boot
	// still produce one event.
	for _, kind := range []engine.BonusKind{engine.BonusDaily, engine.BonusHourly} {
		t.ready[kind] = false
	}

	if _, err := t.cron.AddFunc("* * * * * *", t.tick); err != nil {
		return err
	}
	t.cron.Start()
	t.logger.Debug().Msg("Bonus readiness tick started")
	return nil
}

// Stop halts the tick and waits for a running tick to finish
func (t *BonusTicker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

// tick compares current readiness against the last observed readiness and
// emits an event on each false to true transition
func (t *BonusTicker) tick() {
	now := time.Now()
	for _, status := range t.game.Bonuses(now) {
		was := t.ready[status.Kind]
		t.ready[status.Kind] = status.Ready
		if status.Ready && !was {
			t.logger.Info().
				Str("bonus", string(status.Kind)).
				Int64("amount", status.Amount).
				Msg("Bonus ready")
			t.feed.Publish(engine.Event{
				Type:      engine.EventBonusReady,
				Timestamp: now,
				BonusKind: status.Kind,
				Amount:    status.Amount,
			})
		}
	}
}
