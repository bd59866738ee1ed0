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

package kinetic

import (
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/operation"
)

// Helpers implements framing.Helpers for the wire format in this
// package. One instance per session, holding that session's HMAC key.
type Helpers struct {
	Key []byte
}

// NewHelpers constructs a Helpers bound to the given HMAC key.
func NewHelpers(key []byte) *Helpers {
	return &Helpers{Key: append([]byte(nil), key...)}
}

func (h *Helpers) HeaderLen() int { return HeaderLen }

func (h *Helpers) BodyLen(header []byte) int32 { return DecodeBodyLen(header) }

func (h *Helpers) ValueLen(header []byte) int32 { return DecodeValueLen(header) }

// SetSequence stamps seq into the body's sequence field and
// recomputes the HMAC over the now-final body bytes, in place. This is
// the sender's last mutation before the message reaches the driver
// (§4.5), so the tag always covers exactly the bytes transmitted.
func (h *Helpers) SetSequence(msg *operation.Message, seq int64) error {
	if len(msg.Body) < bodyPrefixLen {
		return tlierr.Newf(tlierr.InvalidArgument, "outbound body too short to stamp sequence: %d bytes", len(msg.Body))
	}
	b, err := Decode(msg.Body)
	if err != nil {
		return err
	}
	b.Seq = seq
	encoded := Encode(h.Key, b)
	copy(msg.Body, encoded)
	return nil
}

// ExtractAckSequence reads the acknowledged-sequence field from a
// received message's body.
func (h *Helpers) ExtractAckSequence(msg *operation.Message) (uint64, error) {
	b, err := Decode(msg.Body)
	if err != nil {
		return 0, err
	}
	return uint64(b.Ack), nil
}
