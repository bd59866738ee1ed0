package codec_test

import (
	"bytes"
	"testing"

	"github.com/sabouaram/ktli/command/codec"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := []codec.Field{
		{Tag: codec.TagKey, Value: []byte("hello")},
		{Tag: codec.TagValue, Value: []byte("world")},
		{Tag: codec.TagKey, Value: []byte("repeat")},
	}

	raw := codec.Encode(fields)
	got, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(fields) {
		t.Fatalf("Decode returned %d fields, want %d", len(got), len(fields))
	}
	for i, f := range fields {
		if got[i].Tag != f.Tag || !bytes.Equal(got[i].Value, f.Value) {
			t.Fatalf("field %d = %+v, want %+v", i, got[i], f)
		}
	}
}

func TestEncodeEmptyValue(t *testing.T) {
	fields := []codec.Field{{Tag: codec.TagSynchronization, Value: nil}}
	raw := codec.Encode(fields)
	got, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || len(got[0].Value) != 0 {
		t.Fatalf("got %+v, want one empty-valued field", got)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	if _, err := codec.Decode([]byte{byte(codec.TagKey), 0, 0}); err == nil {
		t.Fatal("expected an error decoding a truncated field header")
	}
}

func TestDecodeTruncatedValue(t *testing.T) {
	raw := codec.Encode([]codec.Field{{Tag: codec.TagKey, Value: []byte("abcdef")}})
	if _, err := codec.Decode(raw[:len(raw)-2]); err == nil {
		t.Fatal("expected an error decoding a truncated field value")
	}
}

func TestFirstAndAll(t *testing.T) {
	fields := []codec.Field{
		{Tag: codec.TagKey, Value: []byte("a")},
		{Tag: codec.TagKey, Value: []byte("b")},
		{Tag: codec.TagValue, Value: []byte("v")},
	}

	if v, ok := codec.First(fields, codec.TagValue); !ok || string(v) != "v" {
		t.Fatalf("First(TagValue) = %q, %v", v, ok)
	}
	if _, ok := codec.First(fields, codec.TagBatchID); ok {
		t.Fatal("First for an absent tag should report false")
	}

	all := codec.All(fields, codec.TagKey)
	if len(all) != 2 || string(all[0]) != "a" || string(all[1]) != "b" {
		t.Fatalf("All(TagKey) = %v, want [a b]", all)
	}
}
