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

// Package worker implements the two tasks a connected Session runs:
// the sender, which drains the send queue and stamps/transmits
// Operations (§4.5), and the receiver, which polls the driver and
// matches inbound frames back to their Operation (§4.6).
package worker

import (
	"time"

	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
	"github.com/sabouaram/ktli/stats"
)

// RunSender is the sender task's eternal loop. It returns once the
// session's send queue is closed and drained. Intended to run in its
// own goroutine for the life of one Connected session.
func RunSender(s *session.Session, st *stats.Registry) {
	defer s.WorkerDone()

	for {
		if !s.Send.Wait() {
			return
		}
		for {
			op, ok := s.Send.PopFront()
			if !ok {
				break
			}
			sendOne(s, op, st)
		}
	}
}

func sendOne(s *session.Session, op *operation.Operation, st *stats.Registry) {
	seq := s.NextSeq()
	op.SetSeq(seq)

	if err := s.Helpers.SetSequence(&op.SendMsg, seq); err != nil {
		s.Log.Error("set_sequence failed: " + err.Error())
		op.SetState(operation.StateFailed)
		op.SetErr(err)
		s.Completion.Push(op)
		return
	}

	if op.WantsResponse() {
		s.Receive.Push(op)
	}
	timeout := op.RequestedTimeout()
	if timeout <= 0 {
		timeout = s.Config.OperationTimeout
	}
	op.Deadline = time.Now().Add(timeout)

	gather := [][]byte{op.SendMsg.Header, op.SendMsg.Body, op.SendMsg.Value}
	n, err := s.Driver.Send(gather)
	op.SetState(operation.StateSent)
	if op.CollectsTimestamps() {
		op.Timestamps.AfterSend = time.Now()
	}

	if err != nil {
		if op.WantsResponse() {
			s.Receive.Remove(op.Backref())
		}
		op.SetState(operation.StateFailed)
		op.SetErr(err)
		s.Completion.Push(op)
		if st != nil {
			st.RecordErr(op.Kind)
		}
		return
	}

	if st != nil {
		st.RecordSend(op.Kind, n)
	}

	if !op.WantsResponse() {
		op.SetState(operation.StateReceived)
		if op.CollectsTimestamps() {
			op.Timestamps.Complete = time.Now()
		}
		s.Completion.Push(op)
		if st != nil {
			st.RecordOK(op.Kind, op)
		}
	}
}
