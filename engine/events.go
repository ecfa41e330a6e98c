package engine

import (
	"time"
)

// EventType identifies an engine event raised for the presentation layer
type EventType string

const (
	EventBalanceChanged      EventType = "balance_changed"
	EventPayoutResolved      EventType = "payout_resolved"
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventBonusReady          EventType = "bonus_ready"
	EventTransferResult      EventType = "transfer_result"
	EventNotification        EventType = "notification"
	EventSpinStart           EventType = "spin_start"
	EventWinResolved         EventType = "win_resolved"
)

// Severity levels for notification events
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Event is published to registered listeners after a mutation has been
// committed. Fields beyond Type are populated per event kind.
type Event struct {
	Type           EventType     `json:"type"`
	Timestamp      time.Time     `json:"timestamp"`
	SpinID         string        `json:"spinId,omitempty"`
	Amount         int64         `json:"amount,omitempty"`
	Balance        int64         `json:"balance,omitempty"`
	AccountBalance int64         `json:"accountBalance,omitempty"`
	Level          int           `json:"level,omitempty"`
	Achievement    AchievementID `json:"achievementId,omitempty"`
	Reward         int64         `json:"reward,omitempty"`
	BonusKind      BonusKind     `json:"bonusKind,omitempty"`
	Success        bool          `json:"success,omitempty"`
	Message        string        `json:"message,omitempty"`
	Severity       string        `json:"severity,omitempty"`
}

// Listener receives committed engine events. Listeners run synchronously on
// the mutating call after the state change has been persisted; they must not
// call back into the engine.
type Listener func(Event)

// Subscribe registers a listener for all future events
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// queue buffers an event for publication once the surrounding mutation commits.
// Callers must hold e.mu.
func (e *Engine) queue(ev Event) {
	ev.Timestamp = e.now()
	e.pendingEvents = append(e.pendingEvents, ev)
}

// notify queues a user-facing notification event. Callers must hold e.mu.
func (e *Engine) notify(severity, message string) {
	e.queue(Event{Type: EventNotification, Severity: severity, Message: message})
}

// balanceChanged queues a balance snapshot event. Callers must hold e.mu.
func (e *Engine) balanceChanged() {
	e.queue(Event{
		Type:           EventBalanceChanged,
		Balance:        e.state.Balance,
		AccountBalance: e.state.AccountBalance,
	})
}
