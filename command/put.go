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

// PutRequest carries one put exchange's parameters, grounded on src/put.c.
type PutRequest struct {
	Key             []byte
	Value           []byte
	DBVersion       []byte
	NewVersion      []byte
	Tag             []byte
	Algorithm       byte
	Synchronization byte
	// BatchID, if non-zero, makes this a batched put (src/batch.c)
	// instead of a standalone one.
	BatchID int64
}

// Put stores Value under Key, optionally as part of an open batch.
func Put(c *client.Client, descriptor int, req PutRequest, timeout time.Duration) tlierr.Error {
	sess, err := c.Session(descriptor)
	if err != nil {
		return err
	}

	kind := operation.KindPut
	fields := []codec.Field{
		{Tag: codec.TagKey, Value: req.Key},
		{Tag: codec.TagDBVersion, Value: req.DBVersion},
		{Tag: codec.TagNewVersion, Value: req.NewVersion},
		{Tag: codec.TagTag, Value: req.Tag},
		{Tag: codec.TagAlgorithm, Value: []byte{req.Algorithm}},
		{Tag: codec.TagSynchronization, Value: []byte{req.Synchronization}},
	}
	if req.BatchID != 0 {
		kind = operation.KindBatchPut
		fields = append(fields, codec.Field{Tag: codec.TagBatchID, Value: encodeInt64(req.BatchID)})
	}

	op, operr := buildRequest(sess, kind, operation.FlagRequestResponse, fields, req.Value)
	if operr != nil {
		return operr
	}

	respFields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return xerr
	}
	if st := c.Stats; st != nil {
		st.RecordKeyValueLen(kind, len(req.Key), len(req.Value))
	}
	return checkStatus(respFields)
}
