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

// Package operation defines Operation, the unit of work the transport
// layer moves between the send, receive, and completion queues.
package operation

import (
	"sync"
	"time"

	tlierr "github.com/sabouaram/ktli/errors"
)

// Magic proves a record was minted by this package; zeroed on Release.
const Magic = 0x4b54494f // "KTIO"

// Kind identifies which RPC this Operation carries.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNoop
	KindPut
	KindGet
	KindDelete
	KindGetLog
	KindRange
	KindBatchStart
	KindBatchPut
	KindBatchDelete
	KindBatchCommit
	KindBatchAbort
	KindFlush
	KindPinOp
	KindExec
	KindSecurity
	KindFirmwareUpgrade
)

//nolint:exhaustive
func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindPut:
		return "put"
	case KindGet:
		return "get"
	case KindDelete:
		return "delete"
	case KindGetLog:
		return "getlog"
	case KindRange:
		return "range"
	case KindBatchStart:
		return "batch-start"
	case KindBatchPut:
		return "batch-put"
	case KindBatchDelete:
		return "batch-delete"
	case KindBatchCommit:
		return "batch-commit"
	case KindBatchAbort:
		return "batch-abort"
	case KindFlush:
		return "flush"
	case KindPinOp:
		return "pin"
	case KindExec:
		return "exec"
	case KindSecurity:
		return "security"
	case KindFirmwareUpgrade:
		return "firmware-upgrade"
	default:
		return "unknown"
	}
}

// Flags controls whether an Operation expects a matching response.
type Flags uint8

const (
	// FlagRequestResponse is the default: submit a request, await its matched response.
	FlagRequestResponse Flags = 1 << iota
	// FlagRequestOnly means no response is expected; the Operation completes at send time.
	FlagRequestOnly
	// FlagResponseOnly marks an Operation synthesized by the receiver for an unsolicited message.
	FlagResponseOnly
	// FlagCollectTimestamps enables timestamp capture for statistics (§4.9).
	FlagCollectTimestamps
)

// State is the lifecycle of a single Operation.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateReceived
	StateFailed
	StateTimedOut
)

//nolint:exhaustive
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSent:
		return "sent"
	case StateReceived:
		return "received"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Segment is one gather-vector entry: a contiguous byte range.
type Segment []byte

// Message is the three-part framing a Kinetic exchange always has:
// header, body, value. Any part may be empty (value almost always is
// for non-put/get commands).
type Message struct {
	Header Segment
	Body   Segment
	Value  Segment
}

// Timestamps records the four instants §3 asks for, only populated
// when FlagCollectTimestamps is set.
type Timestamps struct {
	Start         time.Time
	AfterSend     time.Time
	BeforeReceive time.Time
	Complete      time.Time
}

// Backref is the self-validating (queue, node) tagged index a queue
// hands back when it takes ownership of an Operation (§4.4, design note
// "per-operation back-pointers to queue nodes").
type Backref struct {
	Queue string
	Node  uint64
	valid bool
}

func (b Backref) Valid() bool { return b.valid }

// NewBackref constructs a valid Backref; the zero value is intentionally invalid.
func NewBackref(queue string, node uint64) Backref {
	return Backref{Queue: queue, Node: node, valid: true}
}

// Operation is the unit of work described in spec.md §3. Exactly one
// goroutine owns it at a time: the submitter before Submit, the core
// from Submit to the completion queue, the caller again after Reap.
type Operation struct {
	magic uint32

	Kind  Kind
	Flags Flags

	mu    sync.Mutex
	seq   int64
	state State

	SendMsg Message
	RecvMsg Message

	Deadline time.Time

	requestedTimeout time.Duration

	backref Backref

	// CallerContext is never dereferenced by the core; it is returned
	// to the caller verbatim on completion.
	CallerContext interface{}

	Timestamps Timestamps

	err error
}

// New allocates an Operation ready for Submit. kind and flags are
// fixed for the life of the Operation; FlagRequestOnly and
// FlagRequestResponse are mutually exclusive (§3).
func New(kind Kind, flags Flags, send Message) (*Operation, tlierr.Error) {
	if flags&FlagRequestOnly != 0 && flags&FlagRequestResponse != 0 {
		return nil, tlierr.New(tlierr.InvalidArgument, "request-only and request-response are mutually exclusive")
	}
	if len(send.Header) == 0 && len(send.Body) == 0 {
		return nil, tlierr.New(tlierr.InvalidArgument, "send message is empty")
	}
	return &Operation{
		magic:   Magic,
		Kind:    kind,
		Flags:   flags,
		state:   StateNew,
		SendMsg: send,
	}, nil
}

// Valid reports whether the record still carries its creation magic
// (false after Release).
func (o *Operation) Valid() bool {
	return o != nil && o.magic == Magic
}

// Release poisons the record; called once it has been reaped and the
// caller is done with it. Mirrors the typed-aggregate poison-on-destroy
// invariant (§3, invariant 6) for the plain Operation record too.
func (o *Operation) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.magic = 0
}

func (o *Operation) Seq() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq
}

func (o *Operation) SetSeq(seq int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq = seq
}

// WithDeadline overrides the session's default per-Operation timeout
// for this one Operation (the firmware-upgrade adapter uses this for
// its long-running exchange). Must be called before Submit; the
// sender stamps Deadline = now + RequestedTimeout() if set, else
// now + the session's configured default.
func (o *Operation) WithDeadline(d time.Duration) *Operation {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requestedTimeout = d
	return o
}

// RequestedTimeout returns the per-Operation deadline override set via
// WithDeadline, or 0 if none was set (the sender falls back to the
// session's configured default).
func (o *Operation) RequestedTimeout() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requestedTimeout
}

func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Operation) SetState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// Err returns the terminal error recorded for this Operation, if any.
// A Received Operation with no transport error has Err() == nil.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Operation) SetErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// Backref returns the Operation's current queue position marker, or
// the zero (invalid) Backref when it is on no queue.
func (o *Operation) Backref() Backref {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.backref
}

func (o *Operation) SetBackref(b Backref) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.backref = b
}

func (o *Operation) ClearBackref() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.backref = Backref{}
}

// WantsResponse reports whether a sent Operation should be parked on
// the receive queue awaiting a matching reply.
func (o *Operation) WantsResponse() bool {
	return o.Flags&FlagRequestResponse != 0
}

// CollectsTimestamps reports whether per-phase timestamps should be stamped.
func (o *Operation) CollectsTimestamps() bool {
	return o.Flags&FlagCollectTimestamps != 0
}
