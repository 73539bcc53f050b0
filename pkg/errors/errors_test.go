package errors

import (
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	e := NewWithCode(ErrorTypeRateLimit, "too many requests", 429)
	want := "rate_limit error (code 429): too many requests"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	e2 := New(ErrorTypeLogin, "still not logged in")
	if e2.Error() != "login error: still not logged in" {
		t.Errorf("unexpected error string: %q", e2.Error())
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{New(ErrorTypeRateLimit, "429"), true},
		{New(ErrorTypeLogin, "bad credentials"), true},
		{New(ErrorTypeActionBlocked, "blocked"), true},
		{New(ErrorTypeNotFound, "gone"), false},
		{New(ErrorTypeNavigation, "timeout"), false},
		{fmt.Errorf("wrapped: %w", New(ErrorTypeActionBlocked, "blocked")), true},
		{fmt.Errorf("plain error"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeNavigation) {
		t.Error("navigation errors should be retryable")
	}
	if IsRetryable(ErrorTypeRateLimit) {
		t.Error("rate limit errors must not be retried")
	}
	if IsRetryable(ErrorTypeActionBlocked) {
		t.Error("action blocked must not be retried")
	}
}

func TestTypeOf(t *testing.T) {
	if TypeOf(New(ErrorTypeLedger, "corrupt")) != ErrorTypeLedger {
		t.Error("expected ledger type")
	}
	if TypeOf(fmt.Errorf("whatever")) != ErrorTypeUnknown {
		t.Error("untyped errors report unknown")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("goto: %w", NewWithCode(ErrorTypeNotFound, "404", 404))) {
		t.Error("wrapped not-found should be detected")
	}
	if IsNotFound(New(ErrorTypeNavigation, "slow")) {
		t.Error("navigation is not not-found")
	}
}
