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

// Package buffer is the typed-aggregate lifecycle. Its kinds cover kv,
// range result, iterator, batch, and getlog result; in this module only
// the range iterator hands its state back in an Aggregate, and the
// command adapters return plain values. Go's garbage collector makes manual header+payload
// allocation pointless, but the validity contract it bought in the
// original core — "this handle was actually created by us, and isn't
// being reused after teardown" — still matters once zero-copy slices
// into decoded response buffers are in play, so the magic/type-tag
// envelope and the ordered cleanup-context list are kept (§4.10).
package buffer

import (
	"sync"

	tlierr "github.com/sabouaram/ktli/errors"
)

const magic = 0x4B544C49 // "KTLI"

const poison = 0xDEADBEEF

// Kind is the closed enumeration of aggregate types an Aggregate can
// be tagged with.
type Kind uint8

const (
	KindValue Kind = iota + 1
	KindRange
	KindIterator
	KindBatch
	KindStats
	KindGetLog
	KindVersion
)

// cleanupEntry pairs one registered value with the destructor that
// owns it. Entries never hold a reference back to the Aggregate that
// owns them — only the aggregate may address its contexts, never the
// reverse (forbidding the cleanup-cycle hazard named in the redesign
// notes).
type cleanupEntry struct {
	ctx        any
	destructor func(any)
}

// Aggregate is the lifecycle envelope wrapping one API-visible object.
// Descriptor ties it to the session.Table slot it was produced under;
// validity is magic plus a Kind in range, checked by Valid on every
// entry point a caller might call after the aggregate was destroyed.
type Aggregate struct {
	mu         sync.Mutex
	magic      uint32
	kind       Kind
	descriptor int
	contexts   []cleanupEntry
	Payload    any
}

// Create allocates a fresh Aggregate tagged kind, scoped to descriptor.
// Type-specific initialization (opening a batch id, allocating range
// windows) is the caller's responsibility, performed on the returned
// Aggregate's Payload once Create returns — keeping this constructor
// generic across all seven kinds rather than switching on Kind itself.
func Create(descriptor int, kind Kind) *Aggregate {
	return &Aggregate{
		magic:      magic,
		kind:       kind,
		descriptor: descriptor,
	}
}

// Valid reports whether a is live: created by Create, not yet
// Destroy-ed, and tagged with a Kind from the closed enumeration.
func (a *Aggregate) Valid() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.magic == magic && a.kind >= KindValue && a.kind <= KindVersion
}

// Kind returns the aggregate's type tag.
func (a *Aggregate) Kind() Kind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kind
}

// Descriptor returns the session descriptor this aggregate was
// created under.
func (a *Aggregate) Descriptor() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.descriptor
}

// AddContext appends a cleanup context to a's list. destructor is
// invoked with ctx, in insertion order, the next time Clean or Destroy
// runs.
func (a *Aggregate) AddContext(ctx any, destructor func(any)) tlierr.Error {
	if !a.Valid() {
		return tlierr.New(tlierr.InvalidHandle, "add context on an invalid aggregate")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contexts = append(a.contexts, cleanupEntry{ctx: ctx, destructor: destructor})
	return nil
}

// Clean runs every registered destructor in insertion order and
// empties the context list, but leaves the aggregate itself valid and
// reusable — Create need not be called again to add fresh contexts.
func (a *Aggregate) Clean() tlierr.Error {
	if !a.Valid() {
		return tlierr.New(tlierr.InvalidHandle, "clean an invalid aggregate")
	}
	a.mu.Lock()
	contexts := a.contexts
	a.contexts = nil
	a.mu.Unlock()

	for _, e := range contexts {
		e.destructor(e.ctx)
	}
	return nil
}

// Destroy runs Clean, then poisons the magic so any later call through
// a stale reference to a fails Valid, and drops the payload.
func (a *Aggregate) Destroy() tlierr.Error {
	if cerr := a.Clean(); cerr != nil {
		return cerr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.magic = poison
	a.Payload = nil
	return nil
}
