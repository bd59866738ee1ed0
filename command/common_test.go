package command

import (
	"testing"

	"github.com/sabouaram/ktli/command/codec"
	tlierr "github.com/sabouaram/ktli/errors"
)

func TestEncodeDecodeInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		if got := decodeInt64(encodeInt64(v)); got != v {
			t.Errorf("decodeInt64(encodeInt64(%d)) = %d", v, got)
		}
	}
}

func TestDecodeInt64TooShort(t *testing.T) {
	if got := decodeInt64([]byte{1, 2, 3}); got != 0 {
		t.Errorf("decodeInt64(short) = %d, want 0", got)
	}
}

func TestStatusOfDefaultsToOK(t *testing.T) {
	code, msg := statusOf(nil)
	if code != StatusOK || msg != "" {
		t.Errorf("statusOf(nil) = (%d, %q), want (%d, \"\")", code, msg, StatusOK)
	}
}

func TestCheckStatusOK(t *testing.T) {
	fields := []codec.Field{
		{Tag: codec.TagStatusCode, Value: []byte{0, 0, 0, 0}},
	}
	if err := checkStatus(fields); err != nil {
		t.Errorf("checkStatus(OK) = %v, want nil", err)
	}
}

func TestCheckStatusError(t *testing.T) {
	fields := []codec.Field{
		{Tag: codec.TagStatusCode, Value: []byte{0, 0, 0, 7}},
		{Tag: codec.TagStatusMessage, Value: []byte("no such key")},
	}
	err := checkStatus(fields)
	if err == nil {
		t.Fatal("checkStatus(non-zero) should return an error")
	}
	if tlierr.KindOf(err) != tlierr.ProtocolViolation {
		t.Errorf("checkStatus error kind = %v, want ProtocolViolation", tlierr.KindOf(err))
	}
}
