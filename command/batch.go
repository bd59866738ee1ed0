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

package command

import (
	"time"

	"github.com/sabouaram/ktli/client"
	"github.com/sabouaram/ktli/command/codec"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/operation"
)

// Batch represents one open batch on a session, grounded on
// src/batch.c's kb_bid bookkeeping (§ambient supplement). Put and
// Delete adapters join a batch by setting PutRequest.BatchID /
// DeleteRequest.BatchID to Batch.ID.
type Batch struct {
	ID int64
}

// BatchStart opens a new batch and allocates its id from the session's
// batch-id counter.
func BatchStart(c *client.Client, descriptor int, timeout time.Duration) (Batch, tlierr.Error) {
	sess, err := c.Session(descriptor)
	if err != nil {
		return Batch{}, err
	}

	id := sess.NextBatchID()
	op, operr := buildRequest(sess, operation.KindBatchStart, operation.FlagRequestResponse,
		[]codec.Field{{Tag: codec.TagBatchID, Value: encodeInt64(id)}}, nil)
	if operr != nil {
		return Batch{}, operr
	}

	fields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return Batch{}, xerr
	}
	if serr := checkStatus(fields); serr != nil {
		return Batch{}, serr
	}
	return Batch{ID: id}, nil
}

// BatchCommit closes b successfully, applying every put/delete
// submitted under it atomically on the drive. No end-of-batch sequence
// reconciliation is performed (explicitly out of scope, per the open
// question this supplement does not resolve).
func BatchCommit(c *client.Client, descriptor int, b Batch, timeout time.Duration) tlierr.Error {
	return closeBatch(c, descriptor, b, operation.KindBatchCommit, timeout)
}

// BatchAbort discards b; none of its puts/deletes take effect.
func BatchAbort(c *client.Client, descriptor int, b Batch, timeout time.Duration) tlierr.Error {
	return closeBatch(c, descriptor, b, operation.KindBatchAbort, timeout)
}

func closeBatch(c *client.Client, descriptor int, b Batch, kind operation.Kind, timeout time.Duration) tlierr.Error {
	sess, err := c.Session(descriptor)
	if err != nil {
		return err
	}

	op, operr := buildRequest(sess, kind, operation.FlagRequestResponse,
		[]codec.Field{{Tag: codec.TagBatchID, Value: encodeInt64(b.ID)}}, nil)
	if operr != nil {
		return operr
	}

	fields, xerr := exchange(c, descriptor, op, timeout)
	sess.BatchClosed()
	if xerr != nil {
		return xerr
	}
	return checkStatus(fields)
}
