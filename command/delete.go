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

// DeleteRequest carries one delete exchange's parameters, grounded on src/del.c.
type DeleteRequest struct {
	Key             []byte
	DBVersion       []byte
	Synchronization byte
	// BatchID, if non-zero, makes this a batched delete (src/batch.c).
	BatchID int64
}

// Delete removes the entry stored under Key.
func Delete(c *client.Client, descriptor int, req DeleteRequest, timeout time.Duration) tlierr.Error {
	sess, err := c.Session(descriptor)
	if err != nil {
		return err
	}

	kind := operation.KindDelete
	fields := []codec.Field{
		{Tag: codec.TagKey, Value: req.Key},
		{Tag: codec.TagDBVersion, Value: req.DBVersion},
		{Tag: codec.TagSynchronization, Value: []byte{req.Synchronization}},
	}
	if req.BatchID != 0 {
		kind = operation.KindBatchDelete
		fields = append(fields, codec.Field{Tag: codec.TagBatchID, Value: encodeInt64(req.BatchID)})
	}

	op, operr := buildRequest(sess, kind, operation.FlagRequestResponse, fields, nil)
	if operr != nil {
		return operr
	}

	respFields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return xerr
	}
	return checkStatus(respFields)
}
