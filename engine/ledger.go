package engine

import (
	"context"
	"fmt"

	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// TransferDirection selects the source and destination of a transfer
type TransferDirection string

const (
	// TransferToAccount moves spendable balance into the banked account
	TransferToAccount TransferDirection = "to_account"
	// TransferToBalance moves banked funds back onto the machine
	TransferToBalance TransferDirection = "to_balance"
)

// Currency identifies one of the two ledger currencies
type Currency string

const (
	CurrencyBalance Currency = "balance"
	CurrencyAccount Currency = "account"
)

// placeBet debits the wager from the spendable balance.
// Callers must hold e.mu.
func (e *Engine) placeBet(amount int64) error {
	if amount < e.rules.MinBet {
		return errors.Newf(errors.ErrInvalidAmount, "bet must be at least %d", e.rules.MinBet)
	}
	if amount > e.state.Balance {
		return errors.New(errors.ErrInsufficientFunds, "bet exceeds available balance")
	}
	e.state.Balance -= amount
	e.state.TotalWagered += amount
	e.balanceChanged()
	return nil
}

// credit adds amount to the given currency unconditionally.
// Used by payouts, achievement rewards and bonuses. Callers must hold e.mu.
func (e *Engine) credit(currency Currency, amount int64) {
	switch currency {
	case CurrencyAccount:
		e.state.AccountBalance += amount
	default:
		e.state.Balance += amount
	}
	e.balanceChanged()
}

// Transfer moves amount between the spendable balance and the banked
// account. The move is atomic: it either fully applies or the state is
// unchanged. Amounts must be within [1, transfer cap] and covered by the
// source currency.
func (e *Engine) Transfer(ctx context.Context, direction TransferDirection, amount int64) error {
	err := e.mutate(ctx, func() error {
		if amount < 1 || amount > e.rules.TransferCap {
			e.queueTransferResult(false, fmt.Sprintf("transfer must be between 1 and %d", e.rules.TransferCap))
			return errors.Newf(errors.ErrInvalidAmount,
				"transfer must be between 1 and %d", e.rules.TransferCap)
		}

		switch direction {
		case TransferToAccount:
			if amount > e.state.Balance {
				e.queueTransferResult(false, "transfer exceeds available balance")
				return errors.New(errors.ErrInvalidAmount, "transfer exceeds available balance")
			}
			e.state.Balance -= amount
			e.state.AccountBalance += amount
		case TransferToBalance:
			if amount > e.state.AccountBalance {
				e.queueTransferResult(false, "transfer exceeds account balance")
				return errors.New(errors.ErrInvalidAmount, "transfer exceeds account balance")
			}
			e.state.AccountBalance -= amount
			e.state.Balance += amount
		default:
			return errors.Newf(errors.ErrInvalidRequest, "unknown transfer direction %q", direction)
		}

		e.state.clampBet(e.rules)
		e.balanceChanged()
		e.queueTransferResult(true, fmt.Sprintf("%d transferred", amount))
		e.notify(SeveritySuccess, fmt.Sprintf("%d transferred successfully", amount))
		return nil
	})
	return err
}

// queueTransferResult records the transfer outcome event. Failed transfers
// do not commit state, so their event goes on the error queue, which
// publishes after the lock is released. Callers must hold e.mu.
func (e *Engine) queueTransferResult(success bool, message string) {
	ev := Event{
		Type:      EventTransferResult,
		Success:   success,
		Message:   message,
		Timestamp: e.now(),
	}
	if success {
		e.pendingEvents = append(e.pendingEvents, ev)
		return
	}
	e.errorEvents = append(e.errorEvents, ev)
}
