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

// Limits mirrors the drive-declared capacity figures (the supplemented
// feature grounded on kinetic_types.h's kinetic_limits_t). Everything
// here starts at its zero value and is filled in when command.GetLog
// stores a decoded limits page through Session.ApplyLimits; the
// receiver does not decode limits from the unsolicited first-connect
// message. Until then, callers should treat a zero field as "unknown",
// not "zero capacity".
type Limits struct {
	MaxKeySize            int32
	MaxValueSize           int32
	MaxVersionSize         int32
	MaxTagSize             int32
	MaxConnections         int32
	MaxOutstandingReads    int32
	MaxOutstandingWrites   int32
	MaxMessageSize         int32
	MaxKeyRangeCount       int32
	MaxIdentityCount       int32
	MaxPinSize             int32
	MaxBatchSize           int32
	MaxDeletesPerBatch     int32
	MaxOutstandingBatches  int32
	MaxBatchCountPerDevice int32
}

// pendingPermits returns the drive's combined outstanding-read and
// outstanding-write ceiling, or 0 when that sum is not positive;
// Session.ApplyLimits resizes the session's Gate to it.
func (l Limits) pendingPermits() int64 {
	reads := int64(l.MaxOutstandingReads)
	writes := int64(l.MaxOutstandingWrites)
	total := reads + writes
	if total <= 0 {
		return 0
	}
	return total
}
