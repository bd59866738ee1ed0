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

package worker

import (
	"time"

	"github.com/hashicorp/go-multierror"

	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
	"github.com/sabouaram/ktli/stats"
	"github.com/sabouaram/ktli/transport"
)

// pollInterval is the bounded wait the receiver spends in Driver.Poll
// on each iteration (§4.6 step 1).
const pollInterval = 10 * time.Millisecond

// RunReceiver is the receiver task's eternal loop. It returns once the
// session has been moved out of Connected, either by a clean
// Disconnect (stop signal closed) or by its own fatal path.
func RunReceiver(s *session.Session, st *stats.Registry) {
	defer s.WorkerDone()

	stop := s.StopSignal()
	for {
		select {
		case <-stop:
			return
		default:
		}

		result, err := s.Driver.Poll(pollInterval)
		if err != nil || result == transport.Disconnected {
			fatal(s, tlierr.New(tlierr.ConnectionAborted, "driver disconnected", err))
			return
		}

		if result == transport.DataReady {
			if ferr := receiveOne(s, st); ferr != nil {
				fatal(s, ferr)
				return
			}
		}

		sweepDeadlines(s, st)
	}
}

// receiveOne reads exactly one framed message and routes it to the
// matching Operation, or synthesizes a response-only Operation for an
// unsolicited message (§4.6 step 2).
func receiveOne(s *session.Session, st *stats.Registry) tlierr.Error {
	header := make([]byte, s.Helpers.HeaderLen())
	if _, err := s.Driver.Receive([][]byte{header}); err != nil {
		return tlierr.New(tlierr.IoFailed, "receive header", err)
	}

	bodyLen := s.Helpers.BodyLen(header)
	valueLen := s.Helpers.ValueLen(header)
	if bodyLen < 0 || valueLen < 0 {
		return tlierr.New(tlierr.ProtocolViolation, "malformed framing header")
	}

	body := make([]byte, bodyLen)
	value := make([]byte, valueLen)
	wireLen, err := s.Driver.Receive([][]byte{body, value})
	if err != nil {
		return tlierr.New(tlierr.IoFailed, "receive body/value", err)
	}
	wireLen += len(header)

	msg := operation.Message{Header: header, Body: body, Value: value}

	ack, aerr := s.Helpers.ExtractAckSequence(&msg)
	if aerr != nil {
		return tlierr.New(tlierr.ProtocolViolation, "extract ack sequence", aerr)
	}

	matched, found := s.Receive.Find(func(op *operation.Operation) bool {
		return uint64(op.Seq()) == ack
	})

	if found {
		matched.RecvMsg = msg
		if matched.CollectsTimestamps() {
			matched.Timestamps.BeforeReceive = time.Now()
			matched.Timestamps.Complete = time.Now()
		}
		matched.SetState(operation.StateReceived)
		s.Completion.Push(matched)
		if st != nil {
			st.RecordReceive(matched.Kind, wireLen)
			st.RecordOK(matched.Kind, matched)
		}
		return nil
	}

	unsolicited, nerr := operation.New(operation.KindUnknown, operation.FlagResponseOnly, operation.Message{Body: []byte{0}})
	if nerr != nil {
		return nerr
	}
	unsolicited.RecvMsg = msg
	unsolicited.SetState(operation.StateReceived)
	s.Completion.Push(unsolicited)
	if st != nil {
		st.RecordReceive(operation.KindUnknown, wireLen)
	}
	return nil
}

// sweepDeadlines excises and fails every receive-queue Operation whose
// deadline has passed, at most once per second (§4.6 step 3).
func sweepDeadlines(s *session.Session, st *stats.Registry) {
	now := time.Now()
	if !s.SweepDue(now) {
		return
	}

	var expired []operation.Backref
	s.Receive.Each(func(op *operation.Operation) {
		if !op.Deadline.IsZero() && now.After(op.Deadline) {
			expired = append(expired, op.Backref())
		}
	})

	for _, b := range expired {
		op, ok := s.Receive.Remove(b)
		if !ok {
			continue
		}
		op.SetState(operation.StateTimedOut)
		op.SetErr(tlierr.New(tlierr.Timeout, "operation deadline exceeded"))
		s.Completion.Push(op)
		if st != nil {
			st.RecordErr(op.Kind)
		}
	}
}

// fatal implements the receiver's shared fatal path (§4.6 steps 1 and
// "any allocation failure... is fatal"): abort the session, bulk-fail
// every pending Operation, disconnect, and exit. A session already
// moved to Draining by an explicit Disconnect is left alone rather
// than clobbered back to Aborted.
func fatal(s *session.Session, cause tlierr.Error) {
	s.MarkAbortedUnlessDraining()

	var merr *multierror.Error
	merr = multierror.Append(merr, cause)
	pending := append(s.Send.DrainAll(), s.Receive.DrainAll()...)
	for _, op := range pending {
		op.SetState(operation.StateFailed)
		op.SetErr(tlierr.New(tlierr.ConnectionAborted, "session aborted", cause))
		s.Completion.Push(op)
	}

	if derr := s.Driver.Disconnect(); derr != nil {
		merr = multierror.Append(merr, derr)
	}
	s.Log.Error("receiver fatal path: " + merr.Error())
}
