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

// Package codec implements the minimal internal tag-length-value
// encoding the command adapters use for the opaque body.Fields blob.
// This is NOT the real Kinetic protobuf schema — that schema is out of
// the retrieved-example pack, so the adapters carry their own small,
// honestly-documented stand-in (see the command package doc comment).
package codec

import (
	"encoding/binary"

	tlierr "github.com/sabouaram/ktli/errors"
)

// Tag identifies one field within a command's encoded Fields blob.
type Tag byte

const (
	TagKey Tag = iota + 1
	TagValue
	TagNewVersion
	TagDBVersion
	TagTag
	TagAlgorithm
	TagSynchronization
	TagBatchID
	TagStartKey
	TagEndKey
	TagIncludeStart
	TagIncludeEnd
	TagMaxReturned
	TagReverse
	TagACLEntry
	TagFirmwareVersion
	TagStatusCode
	TagStatusMessage
	TagLimitField
)

// Field is one encoded (tag, value) pair. A command may repeat a tag
// (e.g. TagKey in a range response, TagACLEntry in a security request).
type Field struct {
	Tag   Tag
	Value []byte
}

// Encode serializes fields in order as [1-byte tag][4-byte BE
// length][value bytes], concatenated.
func Encode(fields []Field) []byte {
	size := 0
	for _, f := range fields {
		size += 1 + 4 + len(f.Value)
	}
	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, f := range fields {
		out = append(out, byte(f.Tag))
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f.Value)))
		out = append(out, lenBuf[:]...)
		out = append(out, f.Value...)
	}
	return out
}

// Decode parses a blob produced by Encode back into its ordered fields.
func Decode(raw []byte) ([]Field, tlierr.Error) {
	var fields []Field
	for off := 0; off < len(raw); {
		if off+5 > len(raw) {
			return nil, tlierr.New(tlierr.ProtocolViolation, "truncated field header")
		}
		tag := Tag(raw[off])
		length := binary.BigEndian.Uint32(raw[off+1 : off+5])
		off += 5
		if off+int(length) > len(raw) {
			return nil, tlierr.New(tlierr.ProtocolViolation, "truncated field value")
		}
		fields = append(fields, Field{Tag: tag, Value: raw[off : off+int(length)]})
		off += int(length)
	}
	return fields, nil
}

// First returns the value of the first field carrying tag, if any.
func First(fields []Field, tag Tag) ([]byte, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return nil, false
}

// All returns the values of every field carrying tag, in order.
func All(fields []Field, tag Tag) [][]byte {
	var out [][]byte
	for _, f := range fields {
		if f.Tag == tag {
			out = append(out, f.Value)
		}
	}
	return out
}
