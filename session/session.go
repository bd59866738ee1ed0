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

// Package session implements the per-connection state machine: the
// session table (§4.2), the Session record itself, and the server-
// declared Limits a session stores when a GetLog response is applied.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/framing"
	"github.com/sabouaram/ktli/limiter"
	"github.com/sabouaram/ktli/logger"
	"github.com/sabouaram/ktli/queue"
	"github.com/sabouaram/ktli/transport"
)

// InitialSequence is the first sequence number a session assigns; the
// drive's protocol reserves smaller values for its own bookkeeping.
const InitialSequence = 100

// Session is one open (or opening, or draining) connection to a
// drive. Connect starts exactly one sender task and one receiver task;
// the receiver also exits on its own fatal path (Aborted), and
// Disconnect stops both and waits for them before the session can
// return to Opened and then Unknown (§3 invariant).
type Session struct {
	// ID is a process-unique correlation identifier, independent of
	// the session table's reusable integer descriptor; useful for
	// cross-referencing logs once a descriptor has been recycled.
	ID uuid.UUID

	Driver  transport.Driver
	Helpers framing.Helpers
	Config  Config
	Limits  Limits

	Send       *queue.Queue
	Receive    *queue.Queue
	Completion *queue.Queue

	Gate *limiter.Gate
	Log  logger.Logger

	mu    sync.RWMutex
	state State

	nextSeq     int64
	nextBatchID int64
	activeBatch int32

	stopWorkers chan struct{}
	workersDone sync.WaitGroup

	lastSweep atomic.Value // time.Time
}

// New constructs an Opened, unconnected Session ready for Connect.
func New(cfg Config, drv transport.Driver, helpers framing.Helpers, log logger.Logger) (*Session, tlierr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Session{
		ID:          uuid.New(),
		Driver:      drv,
		Helpers:     helpers,
		Config:      cfg,
		Send:        queue.New("send"),
		Receive:     queue.New("receive"),
		Completion:  queue.New("completion"),
		Gate:        limiter.New(0),
		Log:         log,
		state:       Opened,
		nextSeq:     InitialSequence,
		nextBatchID: 1,
		stopWorkers: make(chan struct{}),
	}
	s.lastSweep.Store(time.Time{})
	return s, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// RequireState fails with InvalidState unless the session is currently
// in one of the allowed states.
func (s *Session) RequireState(allowed ...State) tlierr.Error {
	cur := s.State()
	for _, a := range allowed {
		if cur == a {
			return nil
		}
	}
	return tlierr.Newf(tlierr.InvalidState, "operation illegal in state %s", cur)
}

// NextSeq assigns the next monotonically increasing sequence number.
// Only ever called by the sender task (§5 shared-resource policy).
func (s *Session) NextSeq() int64 {
	return atomic.AddInt64(&s.nextSeq, 1) - 1
}

// NextBatchID allocates a fresh batch identifier and marks one more
// batch active (src/batch.c's kb_bid / kssn_bats, §ambient supplement).
func (s *Session) NextBatchID() int64 {
	atomic.AddInt32(&s.activeBatch, 1)
	return atomic.AddInt64(&s.nextBatchID, 1) - 1
}

// BatchClosed decrements the active-batch count once a batch commits or aborts.
func (s *Session) BatchClosed() {
	atomic.AddInt32(&s.activeBatch, -1)
}

// ActiveBatches reports the number of batches currently open on this session.
func (s *Session) ActiveBatches() int32 {
	return atomic.LoadInt32(&s.activeBatch)
}

// ApplyLimits stores server-declared limits decoded from a GetLog
// response (command.GetLog is its caller) and resizes the session's
// Gate to match (§ambient supplement, kinetic_limits_t).
func (s *Session) ApplyLimits(l Limits) {
	s.mu.Lock()
	s.Limits = l
	s.mu.Unlock()
	if p := l.pendingPermits(); p > 0 {
		s.Gate.Resize(p)
	}
}

// StopSignal is read by both workers; closed exactly once, by
// Disconnect, to ask them to exit their loops promptly.
func (s *Session) StopSignal() <-chan struct{} {
	return s.stopWorkers
}

// requestStop closes the stop signal exactly once.
func (s *Session) requestStop() {
	select {
	case <-s.stopWorkers:
	default:
		close(s.stopWorkers)
	}
}

// MarkConnected transitions Opened -> Connected and resets the worker
// stop signal for this connection's lifetime.
func (s *Session) MarkConnected() {
	s.mu.Lock()
	s.state = Connected
	s.stopWorkers = make(chan struct{})
	s.mu.Unlock()
}

// MarkAborted transitions to Aborted (from Connected), the receiver's
// fatal path (§4.6 step 1/3).
func (s *Session) MarkAborted() {
	s.setState(Aborted)
}

// MarkAbortedUnlessDraining is MarkAborted's guarded form: if an
// explicit Disconnect has already moved the session to Draining, that
// transition wins and is left untouched. Without this guard, the
// receiver's fatal path racing a concurrent Disconnect could clobber
// Draining back to Aborted, leaving MarkClosed (which requires Opened)
// permanently unreachable and the table slot stuck.
func (s *Session) MarkAbortedUnlessDraining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Draining {
		s.state = Aborted
	}
}

// MarkDraining transitions to Draining from Connected or Aborted,
// signals both workers to stop, and closes the send queue so the
// sender's blocking Wait unblocks once it has drained whatever was
// already queued.
func (s *Session) MarkDraining() tlierr.Error {
	if err := s.RequireState(Connected, Aborted); err != nil {
		return err
	}
	s.setState(Draining)
	s.requestStop()
	s.Send.Close()
	return nil
}

// MaybeReturnToOpened implements the Draining -> Opened transition:
// occurs exactly when all three queues are empty (§4.2).
func (s *Session) MaybeReturnToOpened() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Draining {
		return
	}
	if s.Send.Len() == 0 && s.Receive.Len() == 0 && s.Completion.Len() == 0 {
		s.state = Opened
	}
}

// MarkClosed transitions Opened -> Unknown; only legal once every
// worker has exited.
func (s *Session) MarkClosed() tlierr.Error {
	if err := s.RequireState(Opened); err != nil {
		return err
	}
	s.setState(Unknown)
	return nil
}

// WaitWorkers blocks until both the sender and receiver tasks have exited.
func (s *Session) WaitWorkers() {
	s.workersDone.Wait()
}

// TrackWorker registers one worker goroutine the session must wait for on shutdown.
func (s *Session) TrackWorker() {
	s.workersDone.Add(1)
}

// WorkerDone marks one tracked worker goroutine as finished.
func (s *Session) WorkerDone() {
	s.workersDone.Done()
}

// SweepDue reports whether at least one second has elapsed since the
// last timeout sweep, and if so, stamps now as the new last-sweep time
// (§4.6 step 3: "fires at most once per real-time second").
func (s *Session) SweepDue(now time.Time) bool {
	last, _ := s.lastSweep.Load().(time.Time)
	if now.Sub(last) < time.Second {
		return false
	}
	s.lastSweep.Store(now)
	return true
}
