package iterator

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sabouaram/ktli/command"
	tlierr "github.com/sabouaram/ktli/errors"
)

// fakeStore serves get-range requests against an in-memory sorted key
// set, capping every response at maxPerReq keys, the way a real drive
// caps at its reported MaxKeyRangeCount.
type fakeStore struct {
	keys      [][]byte
	maxPerReq int32
}

func (s *fakeStore) rangeFn(req command.RangeRequest) ([][]byte, tlierr.Error) {
	var out [][]byte
	for _, k := range s.keys {
		if bytes.Compare(k, req.StartKey) < 0 {
			continue
		}
		if bytes.Equal(k, req.StartKey) && !req.IncludeStart {
			continue
		}
		if bytes.Compare(k, req.EndKey) > 0 {
			continue
		}
		if bytes.Equal(k, req.EndKey) && !req.IncludeEnd {
			continue
		}
		out = append(out, k)
		if int32(len(out)) >= req.MaxReturned || int32(len(out)) >= s.maxPerReq {
			break
		}
	}
	return out, nil
}

func keyN(n int) []byte {
	return []byte(fmt.Sprintf("key-%05d", n))
}

func TestIteratorSingleWindow(t *testing.T) {
	store := &fakeStore{maxPerReq: 1000}
	for i := 0; i < 10; i++ {
		store.keys = append(store.keys, keyN(i))
	}

	it := newWithFetch(0, 1000, 0, store.rangeFn)
	first, err := it.Start(Range{StartKey: keyN(0), EndKey: keyN(9), IncludeStart: true, IncludeEnd: true, Count: 10})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !bytes.Equal(first, keyN(0)) {
		t.Fatalf("first key = %q, want %q", first, keyN(0))
	}

	got := [][]byte{first}
	for i := 1; i < 10; i++ {
		k, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if k == nil {
			t.Fatalf("Next returned nil early at i=%d", i)
		}
		got = append(got, k)
	}

	if k, _ := it.Next(); k != nil {
		t.Fatalf("Next past Count should return nil, got %q", k)
	}

	for i, k := range got {
		if !bytes.Equal(k, keyN(i)) {
			t.Fatalf("key %d = %q, want %q", i, k, keyN(i))
		}
	}
}

func TestIteratorCrossesWindowBoundaryWithoutDuplicates(t *testing.T) {
	const total = 2500
	const serverMax = 1000

	store := &fakeStore{maxPerReq: serverMax}
	for i := 0; i < total; i++ {
		store.keys = append(store.keys, keyN(i))
	}

	it := newWithFetch(0, serverMax, 0, store.rangeFn)
	first, err := it.Start(Range{
		StartKey: keyN(0), EndKey: keyN(total - 1),
		IncludeStart: true, IncludeEnd: true, Count: total,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	seen := map[string]bool{string(first): true}
	order := [][]byte{first}
	for i := 1; i < total; i++ {
		k, err := it.Next()
		if err != nil {
			t.Fatalf("Next at i=%d: %v", i, err)
		}
		if k == nil {
			t.Fatalf("Next returned nil early at i=%d of %d", i, total)
		}
		if seen[string(k)] {
			t.Fatalf("duplicate key %q at i=%d", k, i)
		}
		seen[string(k)] = true
		order = append(order, k)
	}

	if k, _ := it.Next(); k != nil {
		t.Fatalf("Next past Count should return nil, got %q", k)
	}
	if len(order) != total {
		t.Fatalf("yielded %d keys, want %d", len(order), total)
	}
	for i, k := range order {
		if !bytes.Equal(k, keyN(i)) {
			t.Fatalf("key %d = %q, want %q (out of lexicographic order)", i, k, keyN(i))
		}
	}
}

// TestIteratorStopsAtRequestedCountWithMoreKeysAvailable guards against
// undercounting delivered keys across a window refill: the store has
// far more matching keys than Count, and EndKey does not happen to
// land on the Count'th key, so any off-by-one in the returned tally
// would let one extra key past the caller's requested Count.
func TestIteratorStopsAtRequestedCountWithMoreKeysAvailable(t *testing.T) {
	const count = 1500
	const serverMax = 1000
	const storeSize = 2000

	store := &fakeStore{maxPerReq: serverMax}
	for i := 0; i < storeSize; i++ {
		store.keys = append(store.keys, keyN(i))
	}

	it := newWithFetch(0, serverMax, 0, store.rangeFn)
	first, err := it.Start(Range{
		StartKey: keyN(0), EndKey: keyN(storeSize - 1),
		IncludeStart: true, IncludeEnd: true, Count: count,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	order := [][]byte{first}
	for i := 1; i < count; i++ {
		k, err := it.Next()
		if err != nil {
			t.Fatalf("Next at i=%d: %v", i, err)
		}
		if k == nil {
			t.Fatalf("Next returned nil early at i=%d of %d", i, count)
		}
		order = append(order, k)
	}

	if k, _ := it.Next(); k != nil {
		t.Fatalf("Next past Count should return nil, got %q", k)
	}
	if len(order) != count {
		t.Fatalf("yielded %d keys, want exactly %d", len(order), count)
	}
	for i, k := range order {
		if !bytes.Equal(k, keyN(i)) {
			t.Fatalf("key %d = %q, want %q", i, k, keyN(i))
		}
	}
}

func TestIteratorEmptyRange(t *testing.T) {
	store := &fakeStore{maxPerReq: 1000}
	it := newWithFetch(0, 1000, 0, store.rangeFn)

	first, err := it.Start(Range{StartKey: keyN(0), EndKey: keyN(9), IncludeStart: true, IncludeEnd: true, Count: 10})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if first != nil {
		t.Fatalf("Start on an empty range = %q, want nil", first)
	}
	if k, _ := it.Next(); k != nil {
		t.Fatalf("Next on an empty range = %q, want nil", k)
	}
}

func TestIteratorCloseInvalidatesAggregate(t *testing.T) {
	store := &fakeStore{maxPerReq: 1000, keys: [][]byte{keyN(0)}}
	it := newWithFetch(0, 1000, 0, store.rangeFn)

	if _, err := it.Start(Range{StartKey: keyN(0), EndKey: keyN(0), IncludeStart: true, IncludeEnd: true, Count: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := it.Next(); err == nil {
		t.Fatal("Next after Close should error")
	}
}
