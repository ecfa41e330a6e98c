package errors

import (
	stderrors "errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(ErrInvalidAmount, "bet out of range")
	if got := err.Error(); got != "[1002] bet out of range" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(stderrors.New("disk full"), ErrStorageError, "save failed")
	if got := wrapped.Error(); got != "[1006] save failed [disk full]" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrStorageError, "redis down")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
}

func TestIsCode(t *testing.T) {
	err := New(ErrBonusNotReady, "daily bonus on cooldown")

	if !IsCode(err, ErrBonusNotReady) {
		t.Error("IsCode missed matching code")
	}
	if IsCode(err, ErrInsufficientFunds) {
		t.Error("IsCode matched wrong code")
	}
	if IsCode(stderrors.New("plain"), ErrBonusNotReady) {
		t.Error("IsCode matched a plain error")
	}
	if IsCode(nil, ErrBonusNotReady) {
		t.Error("IsCode matched nil")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrNotFound, "missing")); got != ErrNotFound {
		t.Errorf("GetCode = %d, want %d", got, ErrNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != ErrInternalServerError {
		t.Errorf("GetCode on plain error = %d, want %d", got, ErrInternalServerError)
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{ErrInvalidRequest, 400},
		{ErrNotFound, 404},
		{ErrInsufficientFunds, 400},
		{ErrInvalidAmount, 400},
		{ErrSpinInProgress, 409},
		{ErrBonusNotReady, 409},
		{ErrInvalidBackup, 400},
		{ErrStorageError, 503},
		{ErrConfigError, 500},
		{ErrInternalServerError, 500},
		{-99, 500},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromCode(tt.code); got != tt.want {
			t.Errorf("HTTPStatusFromCode(%d) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
