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

// RangeRequest is one get-range exchange's parameters, grounded on
// src/range.c; the range iterator (package iterator) is this
// adapter's only caller.
type RangeRequest struct {
	StartKey     []byte
	EndKey       []byte
	IncludeStart bool
	IncludeEnd   bool
	MaxReturned  int32
	Reverse      bool
}

// Range fetches up to MaxReturned keys in [StartKey, EndKey] from the
// drive, returned in server order.
func Range(c *client.Client, descriptor int, req RangeRequest, timeout time.Duration) ([][]byte, tlierr.Error) {
	sess, err := c.Session(descriptor)
	if err != nil {
		return nil, err
	}

	fields := []codec.Field{
		{Tag: codec.TagStartKey, Value: req.StartKey},
		{Tag: codec.TagEndKey, Value: req.EndKey},
		{Tag: codec.TagIncludeStart, Value: boolByte(req.IncludeStart)},
		{Tag: codec.TagIncludeEnd, Value: boolByte(req.IncludeEnd)},
		{Tag: codec.TagMaxReturned, Value: encodeInt64(int64(req.MaxReturned))},
		{Tag: codec.TagReverse, Value: boolByte(req.Reverse)},
	}

	op, operr := buildRequest(sess, operation.KindRange, operation.FlagRequestResponse, fields, nil)
	if operr != nil {
		return nil, operr
	}

	respFields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return nil, xerr
	}
	if serr := checkStatus(respFields); serr != nil {
		return nil, serr
	}

	return codec.All(respFields, codec.TagKey), nil
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}
