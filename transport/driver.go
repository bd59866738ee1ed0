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

// Package transport declares the narrow seam between the transport
// core and whatever moves bytes on the wire (§4.1). The only
// implementation in this module is transport/socket; the seam exists
// so a driver over a different I/O facility (io_uring, DPDK, ...)
// could be substituted without touching the core.
package transport

import "time"

// PollResult is the three-way outcome of Driver.Poll.
type PollResult uint8

const (
	DataReady PollResult = iota
	Timeout
	Disconnected
)

func (r PollResult) String() string {
	switch r {
	case DataReady:
		return "data-ready"
	case Timeout:
		return "timeout"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Driver abstracts a full-duplex byte stream. Only the driver touches
// sockets; the core never does. All methods fail with errors.InvalidHandle
// on a closed/nil driver, errors.ConnectFailed / errors.IoFailed with
// an underlying cause otherwise.
type Driver interface {
	// Connect resolves host (either address family) and iterates
	// resolution results, succeeding on the first reachable one.
	Connect(host, port string, useTLS bool) error

	// Disconnect half-closes the connection in both directions;
	// subsequent Receive calls observe end-of-stream, subsequent Send
	// calls fail.
	Disconnect() error

	// Close releases all resources. Legal after Disconnect or instead
	// of it.
	Close() error

	// Send writes the full concatenation of gather, retrying on
	// partial writes and on transient EAGAIN/EWOULDBLOCK, until every
	// byte is written or a fatal error occurs.
	Send(gather [][]byte) (int, error)

	// Receive fills gather completely, blocking until it does or a
	// fatal error/end-of-stream occurs.
	Receive(gather [][]byte) (int, error)

	// Poll waits up to timeout for readable data. timeout <= 0 means
	// block indefinitely.
	Poll(timeout time.Duration) (PollResult, error)
}
