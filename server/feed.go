package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

// Feed fans committed engine events out to connected stream clients.
// Publishing never blocks: a slow client drops events rather than stalling
// the game loop.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan engine.Event
	nextID int
	buffer int
	logger zerolog.Logger
}

// NewFeed creates a feed with the given per-subscriber buffer
func NewFeed(buffer int, logger zerolog.Logger) *Feed {
	return &Feed{
		subs:   make(map[int]chan engine.Event),
		buffer: buffer,
		logger: logger.With().Str("component", "event_feed").Logger(),
	}
}

// Publish delivers an event to every subscriber (non-blocking with drop)
func (f *Feed) Publish(ev engine.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			f.logger.Debug().
				Int("subscriber", id).
				Str("type", string(ev.Type)).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Listener adapts the feed into an engine event listener
func (f *Feed) Listener() engine.Listener {
	return f.Publish
}

// Listen returns an event channel plus a cancel function to stop listening
func (f *Feed) Listen(ctx context.Context) (<-chan engine.Event, context.CancelFunc) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	ch := make(chan engine.Event, f.buffer)
	f.subs[id] = ch
	f.mu.Unlock()

	listenerCtx, cancel := context.WithCancel(ctx)
	out := make(chan engine.Event, f.buffer)

	go func() {
		defer func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(out)
		}()
		for {
			select {
			case <-listenerCtx.Done():
				return
			case ev := <-ch:
				select {
				case out <- ev:
				case <-listenerCtx.Done():
					return
				}
			}
		}
	}()

	return out, cancel
}

// SubscriberCount reports the number of attached listeners
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
