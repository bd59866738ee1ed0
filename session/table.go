/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package session

import (
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"

	tlierr "github.com/sabouaram/ktli/errors"
)

// DefaultTableCapacity is the process-wide default number of sessions
// that may be open simultaneously (§4.2).
const DefaultTableCapacity = 1024

// Table is a fixed-capacity array of atomically-swapped session slots.
// Valid descriptors are small non-negative integers indexing it.
// The occupancy bitset only accelerates the search for a free slot;
// the authoritative state of each slot is still its own atomic
// pointer, swapped with compare-and-swap exactly as §4.2 describes.
type Table struct {
	slots []atomic.Pointer[Session]

	occMu sync.Mutex
	occ   *bitset.BitSet
}

// NewTable allocates a Table with the given capacity (DefaultTableCapacity if <= 0).
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultTableCapacity
	}
	return &Table{
		slots: make([]atomic.Pointer[Session], capacity),
		occ:   bitset.New(uint(capacity)),
	}
}

// Capacity returns the table's fixed size.
func (t *Table) Capacity() int { return len(t.slots) }

// Allocate scans from index 0 for a free slot, CASes the given record
// into it, and returns its descriptor. Returns errors.Exhausted if no
// slot is free.
func (t *Table) Allocate(s *Session) (int, tlierr.Error) {
	for {
		idx, ok := t.nextFree()
		if !ok {
			return -1, tlierr.New(tlierr.Exhausted, "session table full")
		}
		if t.slots[idx].CompareAndSwap(nil, s) {
			t.occMu.Lock()
			t.occ.Set(uint(idx))
			t.occMu.Unlock()
			return idx, nil
		}
		// Lost the race for this slot; retry the scan.
	}
}

func (t *Table) nextFree() (int, bool) {
	t.occMu.Lock()
	defer t.occMu.Unlock()
	idx, ok := t.occ.NextClear(0)
	if !ok || int(idx) >= len(t.slots) {
		return 0, false
	}
	return int(idx), true
}

// Free CASes the slot at descriptor from its current record back to
// nil, releasing it for reuse.
func (t *Table) Free(descriptor int) tlierr.Error {
	if !t.inRange(descriptor) {
		return tlierr.New(tlierr.InvalidHandle, "session descriptor out of range")
	}
	cur := t.slots[descriptor].Load()
	if cur == nil {
		return tlierr.New(tlierr.InvalidHandle, "session descriptor already freed")
	}
	if !t.slots[descriptor].CompareAndSwap(cur, nil) {
		return tlierr.New(tlierr.InvalidHandle, "session descriptor concurrently modified")
	}
	t.occMu.Lock()
	t.occ.Clear(uint(descriptor))
	t.occMu.Unlock()
	return nil
}

// Valid reports whether descriptor names a live slot.
func (t *Table) Valid(descriptor int) bool {
	return t.inRange(descriptor) && t.slots[descriptor].Load() != nil
}

// Get returns the Session at descriptor, or InvalidHandle if out of
// range or naming a freed slot.
func (t *Table) Get(descriptor int) (*Session, tlierr.Error) {
	if !t.inRange(descriptor) {
		return nil, tlierr.New(tlierr.InvalidHandle, "session descriptor out of range")
	}
	s := t.slots[descriptor].Load()
	if s == nil {
		return nil, tlierr.New(tlierr.InvalidHandle, "session descriptor names a freed slot")
	}
	return s, nil
}

func (t *Table) inRange(descriptor int) bool {
	return descriptor >= 0 && descriptor < len(t.slots)
}
