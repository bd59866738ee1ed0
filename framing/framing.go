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

// Package framing declares the five-function vtable (§4.3) that is the
// entire knowledge the transport core has of the wire encoding. The
// core never parses a command body; it only asks Helpers for lengths,
// and to stamp/extract sequence numbers.
package framing

import "github.com/sabouaram/ktli/operation"

// Helpers is supplied by the encoding layer at session-open time. The
// core requires exactly these five operations and nothing else.
type Helpers interface {
	// HeaderLen is the fixed number of bytes the receiver must read
	// before it can compute body/value length. Must be in (0, 1024].
	HeaderLen() int

	// BodyLen parses an already-read framing header and returns the
	// declared body length, or -1 if the header is malformed.
	BodyLen(header []byte) int32

	// ValueLen parses an already-read framing header and returns the
	// declared value length, or -1 if the header is malformed.
	ValueLen(header []byte) int32

	// SetSequence mutates an already-encoded outbound message in place
	// to stamp seq and recompute any authentication tag over the final
	// bytes. Called by the sender as the last mutation before the
	// bytes hit the wire (§4.5).
	SetSequence(msg *operation.Message, seq int64) error

	// ExtractAckSequence reads the acknowledged-sequence field out of
	// an already-received message.
	ExtractAckSequence(msg *operation.Message) (uint64, error)
}
