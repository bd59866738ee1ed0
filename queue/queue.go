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

// Package queue implements the mutex-guarded, condition-variable-backed
// FIFO lists that ferry Operations between the sender task, receiver
// task, and API callers (§4.4). Membership is tracked as an
// operation.Backref so any holder can excise an entry in O(1) without
// rescanning the list.
package queue

import (
	"container/list"
	"sync"

	"github.com/sabouaram/ktli/operation"
)

// Queue is one of the three per-session FIFO lists (send, receive,
// completion). The zero value is not usable; construct with New.
type Queue struct {
	name string

	mu   sync.Mutex
	cond *sync.Cond
	l    *list.List
	idx  map[uint64]*list.Element
	next uint64
	exit bool
}

// New constructs an empty, open Queue identified by name (used only in
// the Backref.Queue field for diagnostics).
func New(name string) *Queue {
	q := &Queue{
		name: name,
		l:    list.New(),
		idx:  make(map[uint64]*list.Element),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends op to the tail and returns the Backref the Operation
// should remember so it can later be excised without a scan.
func (q *Queue) Push(op *operation.Operation) operation.Backref {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	id := q.next
	el := q.l.PushBack(op)
	q.idx[id] = el

	b := operation.NewBackref(q.name, id)
	op.SetBackref(b)

	q.cond.Broadcast()
	return b
}

// PopFront removes and returns the head of the queue, or (nil, false)
// if empty.
func (q *Queue) PopFront() (*operation.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popFrontLocked()
}

func (q *Queue) popFrontLocked() (*operation.Operation, bool) {
	el := q.l.Front()
	if el == nil {
		return nil, false
	}
	q.removeElementLocked(el)
	op := el.Value.(*operation.Operation)
	op.ClearBackref()
	return op, true
}

// Remove excises the Operation identified by b, O(1) via the index
// map. Returns false if b does not name a live entry in this queue
// (already popped, or belongs to a different queue).
func (q *Queue) Remove(b operation.Backref) (*operation.Operation, bool) {
	if !b.Valid() || b.Queue != q.name {
		return nil, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	el, ok := q.idx[b.Node]
	if !ok {
		return nil, false
	}
	q.removeElementLocked(el)
	op := el.Value.(*operation.Operation)
	op.ClearBackref()
	return op, true
}

func (q *Queue) removeElementLocked(el *list.Element) {
	op := el.Value.(*operation.Operation)
	if b := op.Backref(); b.Valid() {
		delete(q.idx, b.Node)
	}
	q.l.Remove(el)
}

// Wait blocks until the queue is non-empty or Close has been called.
// Returns false if it woke up because the queue is closed and remains
// empty.
func (q *Queue) Wait() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.l.Len() == 0 && !q.exit {
		q.cond.Wait()
	}
	return q.l.Len() > 0
}

// Len returns the current number of queued Operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}

// Close marks the queue as exiting and wakes every waiter; it does not
// drain existing entries.
func (q *Queue) Close() {
	q.mu.Lock()
	q.exit = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.exit
}

// Find scans front-to-back for the first Operation matching pred and,
// if found, excises it. Used by the receiver to match an inbound
// acknowledged-sequence against the in-flight set (§4.6) — a scan, not
// O(1), since the search key (sequence) is not the queue's own
// ordering key.
func (q *Queue) Find(pred func(*operation.Operation) bool) (*operation.Operation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for el := q.l.Front(); el != nil; el = el.Next() {
		op := el.Value.(*operation.Operation)
		if pred(op) {
			q.removeElementLocked(el)
			op.ClearBackref()
			return op, true
		}
	}
	return nil, false
}

// DrainAll excises and returns every Operation currently queued, front
// to back. Used by the receiver's fatal path and by Client.Disconnect.
func (q *Queue) DrainAll() []*operation.Operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*operation.Operation, 0, q.l.Len())
	for {
		el := q.l.Front()
		if el == nil {
			break
		}
		q.removeElementLocked(el)
		op := el.Value.(*operation.Operation)
		op.ClearBackref()
		out = append(out, op)
	}
	return out
}

// Each runs fct for every currently queued Operation, front to back,
// without removing them. Used by the receiver's periodic deadline
// sweep (§4.6 step 3), which excises only the subset it selects.
func (q *Queue) Each(fct func(*operation.Operation)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for el := q.l.Front(); el != nil; el = el.Next() {
		fct(el.Value.(*operation.Operation))
	}
}
