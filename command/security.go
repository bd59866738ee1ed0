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

// ACLEntry is one identity's permission grant, pushed to the drive as
// part of a security exchange. Grounded on src/security.c.
type ACLEntry struct {
	Identity    int64
	HMACAlgo    byte
	Permissions []byte
}

// SetACL pushes a full replacement ACL list to the drive. src/security.c
// never waits for a reply, so this Operation carries FlagRequestOnly
// rather than the FlagRequestResponse every other adapter uses —
// exercising the request-only/response-only distinction (§3).
func SetACL(c *client.Client, descriptor int, entries []ACLEntry, timeout time.Duration) tlierr.Error {
	sess, err := c.Session(descriptor)
	if err != nil {
		return err
	}

	var fields []codec.Field
	for _, e := range entries {
		buf := append(encodeInt64(e.Identity), e.HMACAlgo)
		buf = append(buf, e.Permissions...)
		fields = append(fields, codec.Field{Tag: codec.TagACLEntry, Value: buf})
	}

	op, operr := buildRequest(sess, operation.KindSecurity, operation.FlagRequestOnly, fields, nil)
	if operr != nil {
		return operr
	}

	_, xerr := exchange(c, descriptor, op, timeout)
	return xerr
}
