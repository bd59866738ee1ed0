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
	"encoding/binary"

	tlierr "github.com/sabouaram/ktli/errors"
)

// Body is the minimal command envelope this module authenticates and
// sequences. Everything past Fields is opaque to the core (§1) and
// owned by the command/codec package.
//
// Wire layout (all integers big-endian):
//
//	[0:20]  HMAC-SHA1 tag
//	[20:28] sequence (int64)
//	[28:36] acknowledged-sequence (int64)
//	[36:38] command kind (uint16)
//	[38:46] cluster version (int64)
//	[46:]   command-specific fields
type Body struct {
	Seq            int64
	Ack            int64
	Kind           uint16
	ClusterVersion int64
	Fields         []byte
}

// bodyPrefixLen is the fixed portion preceding Fields.
const bodyPrefixLen = HMACLen + 8 + 8 + 2 + 8

// Encode serializes b and signs it with key, returning the full body
// bytes ready to be wrapped in a framing header.
func Encode(key []byte, b Body) []byte {
	out := make([]byte, bodyPrefixLen+len(b.Fields))
	writeUnsigned(out, b)
	tag := Sign(key, out[HMACLen:])
	copy(out[:HMACLen], tag)
	return out
}

func writeUnsigned(out []byte, b Body) {
	binary.BigEndian.PutUint64(out[HMACLen:HMACLen+8], uint64(b.Seq))
	binary.BigEndian.PutUint64(out[HMACLen+8:HMACLen+16], uint64(b.Ack))
	binary.BigEndian.PutUint16(out[HMACLen+16:HMACLen+18], b.Kind)
	binary.BigEndian.PutUint64(out[HMACLen+18:HMACLen+26], uint64(b.ClusterVersion))
	copy(out[bodyPrefixLen:], b.Fields)
}

// Decode parses a received body. It does not verify the HMAC (§4.8:
// this core trusts the transport/TLS layer for peer authentication on
// the receive side).
func Decode(raw []byte) (Body, tlierr.Error) {
	if len(raw) < bodyPrefixLen {
		return Body{}, tlierr.Newf(tlierr.ProtocolViolation, "body too short: %d bytes", len(raw))
	}
	b := Body{
		Seq:            int64(binary.BigEndian.Uint64(raw[HMACLen : HMACLen+8])),
		Ack:            int64(binary.BigEndian.Uint64(raw[HMACLen+8 : HMACLen+16])),
		Kind:           binary.BigEndian.Uint16(raw[HMACLen+16 : HMACLen+18]),
		ClusterVersion: int64(binary.BigEndian.Uint64(raw[HMACLen+18 : HMACLen+26])),
	}
	if len(raw) > bodyPrefixLen {
		b.Fields = append([]byte(nil), raw[bodyPrefixLen:]...)
	}
	return b, nil
}

// Tag returns the HMAC tag a previously-encoded body carries.
func Tag(raw []byte) []byte {
	if len(raw) < HMACLen {
		return nil
	}
	return raw[:HMACLen]
}
