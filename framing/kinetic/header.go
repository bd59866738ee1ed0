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

// Package kinetic implements the byte-exact 9-byte wire header of
// spec.md §6 and the HMAC-SHA1 authentication scheme of §4.8/§6. It is
// the one concrete framing.Helpers implementation in this module.
//
// The command body it authenticates is NOT the real Kinetic protobuf
// schema (that schema is out of pack — see DESIGN.md); it is a minimal
// internal layout (seq/ack/kind/cluster-version prefix + opaque
// command fields) sufficient to exercise every core invariant the
// framing.Helpers contract requires.
package kinetic

import (
	"encoding/binary"

	tlierr "github.com/sabouaram/ktli/errors"
)

// HeaderLen is the fixed 9-byte preamble: magic(1) + bodyLen(4) + valueLen(4).
const HeaderLen = 9

// Magic is the single legal value of the header's first byte (§6).
const Magic = 0x46

// MaxLen is the per-field length ceiling (1 MiB) for both body and value (§3).
const MaxLen = 1 << 20

// EncodeHeader writes the 9-byte framing header for a message whose
// body is bodyLen bytes and whose value is valueLen bytes.
func EncodeHeader(bodyLen, valueLen int) ([]byte, tlierr.Error) {
	if bodyLen < 0 || bodyLen > MaxLen {
		return nil, tlierr.Newf(tlierr.InvalidArgument, "body length %d out of range", bodyLen)
	}
	if valueLen < 0 || valueLen > MaxLen {
		return nil, tlierr.Newf(tlierr.InvalidArgument, "value length %d out of range", valueLen)
	}
	h := make([]byte, HeaderLen)
	h[0] = Magic
	binary.BigEndian.PutUint32(h[1:5], uint32(bodyLen))
	binary.BigEndian.PutUint32(h[5:9], uint32(valueLen))
	return h, nil
}

// DecodeBodyLen parses the body-length field; returns -1 on a
// malformed header (wrong magic, or a declared length out of range).
func DecodeBodyLen(header []byte) int32 {
	n, ok := decode(header)
	if !ok {
		return -1
	}
	return n[0]
}

// DecodeValueLen parses the value-length field; returns -1 on a
// malformed header.
func DecodeValueLen(header []byte) int32 {
	n, ok := decode(header)
	if !ok {
		return -1
	}
	return n[1]
}

func decode(header []byte) ([2]int32, bool) {
	var out [2]int32
	if len(header) != HeaderLen {
		return out, false
	}
	if header[0] != Magic {
		return out, false
	}
	bl := binary.BigEndian.Uint32(header[1:5])
	vl := binary.BigEndian.Uint32(header[5:9])
	if bl > MaxLen || vl > MaxLen {
		return out, false
	}
	out[0] = int32(bl)
	out[1] = int32(vl)
	return out, true
}
