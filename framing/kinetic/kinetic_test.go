package kinetic_test

import (
	"testing"

	"github.com/sabouaram/ktli/framing/kinetic"
	"github.com/sabouaram/ktli/operation"
)

func TestHeaderRoundTrip(t *testing.T) {
	h, err := kinetic.EncodeHeader(123, 456)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	if got := kinetic.DecodeBodyLen(h); got != 123 {
		t.Fatalf("body len = %d, want 123", got)
	}
	if got := kinetic.DecodeValueLen(h); got != 456 {
		t.Fatalf("value len = %d, want 456", got)
	}
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	h, _ := kinetic.EncodeHeader(1, 1)
	h[0] = 0x00
	if got := kinetic.DecodeBodyLen(h); got != -1 {
		t.Fatalf("expected -1 on bad magic, got %d", got)
	}
}

func TestHeaderAllowsZeroBodyLen(t *testing.T) {
	h, err := kinetic.EncodeHeader(0, 0)
	if err != nil {
		t.Fatalf("EncodeHeader(0,0): %v", err)
	}
	if got := kinetic.DecodeBodyLen(h); got != 0 {
		t.Fatalf("body len = %d, want 0 (response-only messages may carry no body fields)", got)
	}
}

func TestSetSequenceChangesHMAC(t *testing.T) {
	key := []byte("shared-secret")
	body := kinetic.Encode(key, kinetic.Body{Seq: 1, Kind: 7, Fields: []byte("payload")})
	tagBefore := append([]byte(nil), kinetic.Tag(body)...)

	msg := &operation.Message{Body: append([]byte(nil), body...)}
	helpers := kinetic.NewHelpers(key)
	if err := helpers.SetSequence(msg, 2); err != nil {
		t.Fatalf("SetSequence: %v", err)
	}

	tagAfter := kinetic.Tag(msg.Body)
	if string(tagBefore) == string(tagAfter) {
		t.Fatalf("HMAC must change when the sequence number changes")
	}
	if !kinetic.Verify(key, msg.Body[kinetic.HMACLen:], tagAfter) {
		t.Fatalf("recomputed HMAC does not verify against the final body bytes")
	}

	decoded, derr := kinetic.Decode(msg.Body)
	if derr != nil {
		t.Fatalf("Decode: %v", derr)
	}
	if decoded.Seq != 2 {
		t.Fatalf("seq = %d, want 2", decoded.Seq)
	}
	if string(decoded.Fields) != "payload" {
		t.Fatalf("fields corrupted by SetSequence: %q", decoded.Fields)
	}
}

func TestExtractAckSequence(t *testing.T) {
	key := []byte("k")
	body := kinetic.Encode(key, kinetic.Body{Ack: 42})
	msg := &operation.Message{Body: body}
	helpers := kinetic.NewHelpers(key)

	ack, err := helpers.ExtractAckSequence(msg)
	if err != nil {
		t.Fatalf("ExtractAckSequence: %v", err)
	}
	if ack != 42 {
		t.Fatalf("ack = %d, want 42", ack)
	}
}

func TestDecodeRejectsShortBody(t *testing.T) {
	if _, err := kinetic.Decode([]byte("short")); err == nil {
		t.Fatalf("expected error decoding a too-short body")
	}
}
