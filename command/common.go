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

// Package command implements thin, codec-owning adapters over the
// transport core for each Kinetic RPC: noop, put, get, delete, getlog,
// range, the batch start/put/delete/commit/abort sequence, security,
// and firmware-upgrade. Each adapter builds a body with command/codec,
// submits through a client.Client, blocks for the matching completion,
// and decodes the result. The body encoding is this package's own
// minimal tag-length-value scheme (command/codec), not the real
// Kinetic protobuf wire schema, which was not available to ground on.
package command

import (
	"encoding/binary"
	"time"

	"github.com/sabouaram/ktli/client"
	"github.com/sabouaram/ktli/command/codec"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/framing/kinetic"
	"github.com/sabouaram/ktli/operation"
	"github.com/sabouaram/ktli/session"
)

// encodeInt64/decodeInt64 are the codec's fixed-width representation
// for batch ids, max-returned counts, and similar scalar fields.
func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeInt64(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// StatusOK is the codec.TagStatusCode value a successful response
// carries.
const StatusOK = 0

// buildRequest assembles the body+header+value for an outbound
// command and wraps it in a fresh Operation.
func buildRequest(sess *session.Session, kind operation.Kind, flags operation.Flags, fields []codec.Field, value []byte) (*operation.Operation, tlierr.Error) {
	body := kinetic.Body{
		Kind:           uint16(kind),
		ClusterVersion: sess.Config.ClusterVersion,
		Fields:         codec.Encode(fields),
	}
	encodedBody := kinetic.Encode(sess.Config.Secret, body)
	header, herr := kinetic.EncodeHeader(len(encodedBody), len(value))
	if herr != nil {
		return nil, herr
	}
	msg := operation.Message{Header: header, Body: encodedBody, Value: value}
	return operation.New(kind, flags, msg)
}

// exchange submits op, blocks for its completion (bounded by timeout,
// 0 meaning no bound), reaps it, and — for a
// request-response Operation — decodes its response fields. Request-
// only Operations (security) return a nil field slice on success.
func exchange(c *client.Client, descriptor int, op *operation.Operation, timeout time.Duration) ([]codec.Field, tlierr.Error) {
	if err := c.Submit(descriptor, op); err != nil {
		return nil, err
	}

	for {
		if perr := c.Poll(descriptor, timeout); perr != nil {
			return nil, perr
		}
		rerr := c.Reap(descriptor, op)
		if rerr == nil {
			break
		}
		if tlierr.Is(rerr, tlierr.NotReady) {
			continue
		}
		return nil, rerr
	}

	if op.Err() != nil {
		return nil, tlierr.New(tlierr.IoFailed, "operation failed", op.Err())
	}
	if !op.WantsResponse() {
		return nil, nil
	}

	b, derr := kinetic.Decode(op.RecvMsg.Body)
	if derr != nil {
		return nil, derr
	}
	return codec.Decode(b.Fields)
}

// statusOf extracts the status code a response carries, defaulting to
// StatusOK when the field is absent (some exchanges, e.g. noop, carry
// no explicit status).
func statusOf(fields []codec.Field) (int32, string) {
	code := int32(StatusOK)
	if raw, ok := codec.First(fields, codec.TagStatusCode); ok && len(raw) >= 4 {
		code = int32(raw[0])<<24 | int32(raw[1])<<16 | int32(raw[2])<<8 | int32(raw[3])
	}
	msg := ""
	if raw, ok := codec.First(fields, codec.TagStatusMessage); ok {
		msg = string(raw)
	}
	return code, msg
}

// checkStatus turns a non-OK response status into a tlierr.Error.
func checkStatus(fields []codec.Field) tlierr.Error {
	code, msg := statusOf(fields)
	if code == StatusOK {
		return nil
	}
	if msg == "" {
		msg = "drive returned a non-success status"
	}
	return tlierr.Newf(tlierr.ProtocolViolation, "status %d: %s", code, msg)
}
