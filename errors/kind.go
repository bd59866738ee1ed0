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

// Package errors implements the error taxonomy of the transport layer
// interface: a closed set of Kind values (§7 of the design), a captured
// call-site trace, and error-hierarchy helpers compatible with the
// standard errors.Is/errors.As.
package errors

import "strconv"

// Kind is a closed taxonomy of transport-layer failure classes. Every
// error the core returns carries exactly one Kind; command adapters and
// callers branch on it rather than on message text.
type Kind uint16

const (
	// Unknown is the zero value; never assigned deliberately.
	Unknown Kind = iota

	// InvalidHandle means the session descriptor does not name a live slot.
	InvalidHandle
	// InvalidState means the requested operation is illegal in the session's current state.
	InvalidState
	// InvalidArgument means a null or structurally malformed input was supplied.
	InvalidArgument
	// Exhausted means the session table has no free slot left.
	Exhausted
	// ConnectFailed means address resolution or the TCP/TLS connect attempt failed.
	ConnectFailed
	// ConnectionAborted means a previously healthy session transitioned to Aborted.
	ConnectionAborted
	// IoFailed means the driver's send or receive returned an error not otherwise classified.
	IoFailed
	// NotReady means reap was called before the Operation reached the completion queue.
	NotReady
	// Timeout means poll or an Operation's deadline expired without a completion.
	Timeout
	// ProtocolViolation means a framing header was malformed or declared lengths disagreed with reality.
	ProtocolViolation
	// OutOfMemory means an allocation failed in a non-recoverable spot.
	OutOfMemory
)

//nolint:exhaustive
func (k Kind) String() string {
	switch k {
	case InvalidHandle:
		return "invalid handle"
	case InvalidState:
		return "invalid state"
	case InvalidArgument:
		return "invalid argument"
	case Exhausted:
		return "exhausted"
	case ConnectFailed:
		return "connect failed"
	case ConnectionAborted:
		return "connection aborted"
	case IoFailed:
		return "io failed"
	case NotReady:
		return "not ready"
	case Timeout:
		return "timeout"
	case ProtocolViolation:
		return "protocol violation"
	case OutOfMemory:
		return "out of memory"
	default:
		return "unknown (" + strconv.Itoa(int(k)) + ")"
	}
}
