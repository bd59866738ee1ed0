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

// Package client is the public entry point of the transport layer
// interface: Open/Connect/Submit/Poll/Reap/Drain/Disconnect/Close,
// wired to a session table, the socket driver, and the kinetic framing
// helpers (§4.7).
package client

import (
	"time"

	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/framing/kinetic"
	"github.com/sabouaram/ktli/logger"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
	"github.com/sabouaram/ktli/stats"
	"github.com/sabouaram/ktli/transport/socket"
	"github.com/sabouaram/ktli/worker"
)

// pollGranularity matches §4.7's "sleep in 10 microsecond increments".
const pollGranularity = 10 * time.Microsecond

// Client owns the process-wide session table and the shared
// operational-statistics registry every session's workers report into.
type Client struct {
	table *session.Table
	Stats *stats.Registry
	Log   logger.Logger
}

// New constructs a Client with a session table of the given capacity
// (session.DefaultTableCapacity when <= 0).
func New(tableCapacity int, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		table: session.NewTable(tableCapacity),
		Stats: stats.NewRegistry("ktli"),
		Log:   log,
	}
}

// Open allocates a session slot in state Opened, ready for Connect.
// Returns the small integer descriptor callers use for every
// subsequent call (§4.2, §6).
func (c *Client) Open(cfg session.Config) (int, tlierr.Error) {
	helpers := kinetic.NewHelpers(cfg.Secret)
	drv := socket.New(cfg.TLS)

	sess, err := session.New(cfg, drv, helpers, c.Log)
	if err != nil {
		return -1, err
	}
	return c.table.Allocate(sess)
}

// Connect dials the configured host/port, starts the sender and
// receiver tasks, and transitions the session to Connected (§4.1).
func (c *Client) Connect(descriptor int) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}
	if rerr := sess.RequireState(session.Opened); rerr != nil {
		return rerr
	}

	if cerr := sess.Driver.Connect(sess.Config.Host, sess.Config.Port, sess.Config.UseTLS); cerr != nil {
		return tlierr.New(tlierr.ConnectFailed, "connect", cerr)
	}

	sess.MarkConnected()
	sess.TrackWorker()
	sess.TrackWorker()
	go worker.RunSender(sess, c.Stats)
	go worker.RunReceiver(sess, c.Stats)
	return nil
}

// Submit enqueues op on the send queue for a Connected session (§4.7).
func (c *Client) Submit(descriptor int, op *operation.Operation) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}
	if rerr := sess.RequireState(session.Connected); rerr != nil {
		return rerr
	}
	if len(op.SendMsg.Header) == 0 && len(op.SendMsg.Body) == 0 {
		return tlierr.New(tlierr.InvalidArgument, "send message is empty")
	}

	op.SetState(operation.StateNew)
	op.RecvMsg = operation.Message{}
	op.SetErr(nil)
	op.ClearBackref()
	if op.CollectsTimestamps() {
		op.Timestamps.Start = time.Now()
	}

	sess.Send.Push(op)
	return nil
}

// Poll blocks until the completion queue is non-empty, the session
// aborts, or timeout elapses (0 means indefinite) (§4.7).
func (c *Client) Poll(descriptor int, timeout time.Duration) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}
	if rerr := sess.RequireState(session.Connected); rerr != nil {
		return rerr
	}

	indefinite := timeout <= 0
	deadline := time.Now().Add(timeout)

	for {
		if sess.Completion.Len() > 0 {
			return nil
		}
		if sess.Completion.Closed() {
			return tlierr.New(tlierr.ConnectionAborted, "session aborted while polling")
		}
		if !indefinite && time.Now().After(deadline) {
			return tlierr.New(tlierr.Timeout, "poll timeout")
		}
		time.Sleep(pollGranularity)
	}
}

// Reap excises op from the completion queue if it has finished,
// returning errors.NotReady if it has not (§4.7). In Draining, Reap
// delegates to DrainMatch.
func (c *Client) Reap(descriptor int, op *operation.Operation) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}

	if sess.State() == session.Draining {
		return c.DrainMatch(descriptor, op)
	}
	if rerr := sess.RequireState(session.Connected); rerr != nil {
		return rerr
	}

	b := op.Backref()
	if !b.Valid() || b.Queue != "completion" {
		return tlierr.New(tlierr.NotReady, "operation has not reached the completion queue")
	}
	if _, ok := sess.Completion.Remove(b); !ok {
		return tlierr.New(tlierr.NotReady, "operation has not reached the completion queue")
	}
	return nil
}

// DrainMatch excises a named Operation from whichever of the three
// queues currently holds it (completion, then receive, then send),
// marks it Failed, and, if that empties all three queues, returns the
// session to Opened (§4.7).
func (c *Client) DrainMatch(descriptor int, op *operation.Operation) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}
	if rerr := sess.RequireState(session.Draining); rerr != nil {
		return rerr
	}

	pred := func(o *operation.Operation) bool { return o == op }
	for _, q := range []*struct {
		name string
		find func(func(*operation.Operation) bool) (*operation.Operation, bool)
	}{
		{"completion", sess.Completion.Find},
		{"receive", sess.Receive.Find},
		{"send", sess.Send.Find},
	} {
		if _, ok := q.find(pred); ok {
			op.SetState(operation.StateFailed)
			sess.MaybeReturnToOpened()
			return nil
		}
	}
	return tlierr.New(tlierr.InvalidHandle, "operation not found in any queue")
}

// Drain pops and fails any one Operation from completion, receive, or
// send (in that order), or errors.NotReady if all three are empty
// (§4.7, "if none is named, pop any one").
func (c *Client) Drain(descriptor int) (*operation.Operation, tlierr.Error) {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return nil, err
	}
	if rerr := sess.RequireState(session.Draining); rerr != nil {
		return nil, rerr
	}

	if op, ok := sess.Completion.PopFront(); ok {
		op.SetState(operation.StateFailed)
		sess.MaybeReturnToOpened()
		return op, nil
	}
	if op, ok := sess.Receive.PopFront(); ok {
		op.SetState(operation.StateFailed)
		sess.MaybeReturnToOpened()
		return op, nil
	}
	if op, ok := sess.Send.PopFront(); ok {
		op.SetState(operation.StateFailed)
		sess.MaybeReturnToOpened()
		return op, nil
	}
	return nil, tlierr.New(tlierr.NotReady, "no operation pending in any queue")
}

// Disconnect is the bulk-cancellation primitive (§4.7, §5): it fails
// every pending Operation with ConnectionAborted and moves the session
// to Draining. Safe to call from Connected or Aborted.
func (c *Client) Disconnect(descriptor int) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}

	if derr := sess.MarkDraining(); derr != nil {
		return derr
	}

	if derr := sess.Driver.Disconnect(); derr != nil {
		sess.Log.Error("driver disconnect: " + derr.Error())
	}

	sess.WaitWorkers()

	pending := append(sess.Send.DrainAll(), sess.Receive.DrainAll()...)
	for _, op := range pending {
		op.SetState(operation.StateFailed)
		op.SetErr(tlierr.New(tlierr.ConnectionAborted, "session disconnected"))
		sess.Completion.Push(op)
	}

	sess.MaybeReturnToOpened()
	return nil
}

// Close transitions Opened -> Unknown and frees the session slot
// (§9, REDESIGN FLAG: close must actually tear the session down).
func (c *Client) Close(descriptor int) tlierr.Error {
	sess, err := c.table.Get(descriptor)
	if err != nil {
		return err
	}
	if rerr := sess.MarkClosed(); rerr != nil {
		return rerr
	}
	if derr := sess.Driver.Close(); derr != nil {
		return tlierr.New(tlierr.IoFailed, "close", derr)
	}
	return c.table.Free(descriptor)
}

// Session exposes the underlying session.Session for callers (command
// adapters, the range iterator) that need direct access to Config,
// Limits, or the batch-id counters.
func (c *Client) Session(descriptor int) (*session.Session, tlierr.Error) {
	return c.table.Get(descriptor)
}
