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
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // SHA-1 is the Kinetic wire spec's mandated HMAC digest (§4.8/§6), not used for anything security-sensitive beyond the peer's own authentication scheme.
	"crypto/subtle"
	"encoding/binary"
)

// HMACLen is the digest length of the configured HMAC (20 bytes for SHA-1).
const HMACLen = sha1.Size

// Sign computes H_k(len32_be(len(body)) || body), the exact quantity
// §4.8 specifies. Calling it after every mutation to body (e.g. after
// stamping a new sequence number) is what makes the tag cover the
// final transmitted bytes.
func Sign(key, body []byte) []byte {
	mac := hmac.New(sha1.New, key)
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	mac.Write(lenPrefix[:])
	mac.Write(body)
	return mac.Sum(nil)
}

// Verify reports whether tag is the correct HMAC for body under key,
// using a constant-time comparison so equality checks do not leak key
// material through timing (§4.8). This core does not call Verify on
// the response path — the peer is assumed authenticated by TLS or the
// connection itself — but a test harness or a future server-side
// companion can use it.
func Verify(key, body, tag []byte) bool {
	want := Sign(key, body)
	return subtle.ConstantTimeCompare(want, tag) == 1
}
