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

package session

// State is the five-state lifecycle a Session moves through (§4.2).
// Legal transitions: Unknown -> Opened -> Connected -> (Aborted |
// Draining) -> Opened -> Unknown, plus Aborted -> Draining via an
// explicit disconnect.
type State uint8

const (
	// Unknown is the initial state and the state after Close.
	Unknown State = iota
	// Opened is connect-ready; no live socket. Only Connect or Close is legal.
	Opened
	// Connected is a live socket with both workers running; all I/O is legal.
	Connected
	// Aborted means I/O failed unrecoverably; workers are draining to the completion queue as failed; no new submits.
	Aborted
	// Draining means Disconnect was called from Connected or Aborted; queues must empty before Close is legal.
	Draining
)

//nolint:exhaustive
func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Opened:
		return "opened"
	case Connected:
		return "connected"
	case Aborted:
		return "aborted"
	case Draining:
		return "draining"
	default:
		return "invalid"
	}
}
