package errors_test

import (
	"errors"
	"testing"

	tlierr "github.com/sabouaram/ktli/errors"
)

func TestNewAndKind(t *testing.T) {
	e := tlierr.New(tlierr.Timeout, "deadline exceeded")
	if tlierr.KindOf(e) != tlierr.Timeout {
		t.Fatalf("expected Timeout, got %s", tlierr.KindOf(e))
	}
	if !tlierr.Is(e, tlierr.Timeout) {
		t.Fatalf("expected Is(Timeout) to be true")
	}
}

func TestParentChain(t *testing.T) {
	cause := tlierr.New(tlierr.IoFailed, "read: connection reset")
	top := tlierr.New(tlierr.ConnectionAborted, "session aborted", cause)

	if !tlierr.Is(top, tlierr.IoFailed) {
		t.Fatalf("expected parent IoFailed to be reachable through Is")
	}
	if !errors.Is(top, cause) {
		// standard errors.Is walks Unwrap() []error (Go 1.20+ multi-error support)
		t.Fatalf("expected errors.Is to find the parent cause")
	}
}

func TestKindString(t *testing.T) {
	cases := map[tlierr.Kind]string{
		tlierr.InvalidHandle:     "invalid handle",
		tlierr.NotReady:          "not ready",
		tlierr.ProtocolViolation: "protocol violation",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
