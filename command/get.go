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

// GetResult is the decoded response to Get: the value (carried out of
// band in the response's value segment) plus its metadata fields.
type GetResult struct {
	Value     []byte
	DBVersion []byte
	Tag       []byte
	Algorithm byte
}

// Get fetches the value stored under key, grounded on src/get.c.
func Get(c *client.Client, descriptor int, key []byte, timeout time.Duration) (GetResult, tlierr.Error) {
	sess, err := c.Session(descriptor)
	if err != nil {
		return GetResult{}, err
	}

	op, operr := buildRequest(sess, operation.KindGet, operation.FlagRequestResponse,
		[]codec.Field{{Tag: codec.TagKey, Value: key}}, nil)
	if operr != nil {
		return GetResult{}, operr
	}

	fields, xerr := exchange(c, descriptor, op, timeout)
	if xerr != nil {
		return GetResult{}, xerr
	}
	if serr := checkStatus(fields); serr != nil {
		return GetResult{}, serr
	}

	res := GetResult{Value: op.RecvMsg.Value}
	if v, ok := codec.First(fields, codec.TagDBVersion); ok {
		res.DBVersion = v
	}
	if v, ok := codec.First(fields, codec.TagTag); ok {
		res.Tag = v
	}
	if v, ok := codec.First(fields, codec.TagAlgorithm); ok && len(v) > 0 {
		res.Algorithm = v[0]
	}
	if st := c.Stats; st != nil {
		st.RecordKeyValueLen(operation.KindGet, len(key), len(res.Value))
	}
	return res, nil
}
