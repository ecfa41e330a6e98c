package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// testClock is a controllable clock for cooldown tests
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newBonusEngine() (*Engine, *testClock) {
	clock := &testClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	e := New(Options{Logger: zerolog.Nop(), Seed: 1, Now: clock.Now})
	return e, clock
}

func TestBonusReadyWhenNeverClaimed(t *testing.T) {
	e, clock := newBonusEngine()
	for _, kind := range []BonusKind{BonusDaily, BonusHourly} {
		if !e.BonusReady(kind, clock.Now()) {
			t.Errorf("%s bonus not ready on fresh state", kind)
		}
	}
}

func TestClaimBonusAndCooldown(t *testing.T) {
	e, clock := newBonusEngine()
	ctx := context.Background()

	if err := e.ClaimBonus(ctx, BonusDaily); err != nil {
		t.Fatalf("ClaimBonus: %v", err)
	}

	state := e.State()
	if state.AccountBalance != 100 {
		t.Errorf("AccountBalance = %d, want 100", state.AccountBalance)
	}
	if len(state.BonusHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(state.BonusHistory))
	}
	if state.BonusHistory[0].Kind != BonusDaily || state.BonusHistory[0].Amount != 100 {
		t.Errorf("history entry = %+v, want daily/100", state.BonusHistory[0])
	}

	err := e.ClaimBonus(ctx, BonusDaily)
	if !errors.IsCode(err, errors.ErrBonusNotReady) {
		t.Fatalf("second claim error = %v, want BonusNotReady", err)
	}

	clock.Advance(24*time.Hour - time.Second)
	if e.BonusReady(BonusDaily, clock.Now()) {
		t.Error("daily bonus ready one second before cooldown elapses")
	}

	clock.Advance(time.Second)
	if !e.BonusReady(BonusDaily, clock.Now()) {
		t.Error("daily bonus not ready after 24h")
	}
	if err := e.ClaimBonus(ctx, BonusDaily); err != nil {
		t.Fatalf("claim after cooldown: %v", err)
	}
}

func TestBonusCooldownsIndependent(t *testing.T) {
	e, _ := newBonusEngine()
	ctx := context.Background()

	if err := e.ClaimBonus(ctx, BonusDaily); err != nil {
		t.Fatalf("daily claim: %v", err)
	}
	if err := e.ClaimBonus(ctx, BonusHourly); err != nil {
		t.Fatalf("hourly claim blocked by daily cooldown: %v", err)
	}
	if got := e.State().AccountBalance; got != 150 {
		t.Errorf("AccountBalance = %d, want 150", got)
	}
}

func TestBonusHistoryCap(t *testing.T) {
	e, clock := newBonusEngine()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := e.ClaimBonus(ctx, BonusHourly); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		clock.Advance(time.Hour)
	}

	history := e.BonusHistory()
	if len(history) != 10 {
		t.Fatalf("history length = %d, want 10", len(history))
	}
	// most recent first
	for i := 1; i < len(history); i++ {
		if history[i].Date.After(history[i-1].Date) {
			t.Fatalf("history not sorted most recent first at index %d", i)
		}
	}
}

func TestClaimUnknownBonusKind(t *testing.T) {
	e, _ := newBonusEngine()
	err := e.ClaimBonus(context.Background(), BonusKind("weekly"))
	if !errors.IsCode(err, errors.ErrInvalidRequest) {
		t.Fatalf("unknown kind error = %v, want InvalidRequest", err)
	}
}

func TestBonusesStatus(t *testing.T) {
	e, clock := newBonusEngine()
	ctx := context.Background()

	if err := e.ClaimBonus(ctx, BonusHourly); err != nil {
		t.Fatalf("claim: %v", err)
	}
	clock.Advance(30 * time.Minute)

	statuses := e.Bonuses(clock.Now())
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}
	for _, st := range statuses {
		switch st.Kind {
		case BonusDaily:
			if !st.Ready {
				t.Error("daily bonus should be ready on fresh state")
			}
		case BonusHourly:
			if st.Ready {
				t.Error("hourly bonus ready mid-cooldown")
			}
			if st.Remaining != 30*time.Minute {
				t.Errorf("hourly remaining = %s, want 30m", st.Remaining)
			}
			if st.Countdown != "00:30:00" {
				t.Errorf("hourly countdown = %q, want 00:30:00", st.Countdown)
			}
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{time.Hour + 5*time.Minute + 9*time.Second, "01:05:09"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.d); got != tt.want {
			t.Errorf("FormatCountdown(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
