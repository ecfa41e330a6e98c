package server

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

func TestFeedDeliversToSubscribers(t *testing.T) {
	feed := NewFeed(8, zerolog.Nop())

	ch1, cancel1 := feed.Listen(context.Background())
	defer cancel1()
	ch2, cancel2 := feed.Listen(context.Background())
	defer cancel2()

	if got := feed.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", got)
	}

	feed.Publish(engine.Event{Type: engine.EventBalanceChanged, Balance: 95})

	for i, ch := range []<-chan engine.Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != engine.EventBalanceChanged || ev.Balance != 95 {
				t.Errorf("subscriber %d got %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestFeedCancelDeregisters(t *testing.T) {
	feed := NewFeed(8, zerolog.Nop())

	ch, cancel := feed.Listen(context.Background())
	cancel()

	// the channel closes once the listener goroutine exits
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received an event on a cancelled subscription")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed after cancel")
	}

	deadline := time.Now().Add(time.Second)
	for feed.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber still registered after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeedDropsWhenBufferFull(t *testing.T) {
	feed := NewFeed(1, zerolog.Nop())

	ch, cancel := feed.Listen(context.Background())
	defer cancel()

	// nobody reads; the internal buffers fill and the rest drop
	for i := 0; i < 10; i++ {
		feed.Publish(engine.Event{Type: engine.EventNotification})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		case <-time.After(100 * time.Millisecond):
			if received == 0 || received >= 10 {
				t.Errorf("received %d events, want a partial delivery", received)
			}
			return
		}
	}
}
