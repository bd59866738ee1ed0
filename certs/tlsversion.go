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

// Package certs builds the *tls.Config a Kinetic session dials with
// when use_tls is set (§4.1, §6). Trimmed from nabbar-golib/certificates'
// version/cipher/curve model: this client only ever dials, it never
// terminates TLS, so certificate authority management and server-side
// options are out of scope.
package certs

import (
	"crypto/tls"
	"strings"
)

// Version wraps crypto/tls's version constants with string parsing,
// matching nabbar-golib/certificates/tlsversion's vocabulary.
type Version uint16

const (
	VersionUnknown Version = 0
	VersionTLS12   Version = tls.VersionTLS12
	VersionTLS13   Version = tls.VersionTLS13
)

// ParseVersion accepts "1.2"/"tls1.2"/"1.3"/"tls1.3" (case-insensitive).
func ParseVersion(s string) Version {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "tls") {
	case "1.2":
		return VersionTLS12
	case "1.3":
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// Config is the subset of dial-side TLS options a session cares about.
type Config struct {
	// ServerName overrides SNI/certificate verification name; defaults
	// to the session's configured host when empty.
	ServerName string
	// MinVersion defaults to VersionTLS12 when VersionUnknown.
	MinVersion Version
	// InsecureSkipVerify should only ever be true in tests against a
	// mock server with a self-signed certificate.
	InsecureSkipVerify bool
}

// Build produces a *tls.Config ready to pass to tls.Client.
func (c Config) Build(defaultServerName string) *tls.Config {
	min := c.MinVersion
	if min == VersionUnknown {
		min = VersionTLS12
	}
	name := c.ServerName
	if name == "" {
		name = defaultServerName
	}
	return &tls.Config{
		ServerName:         name,
		MinVersion:         uint16(min),
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // only ever set by callers opting into test-mode
	}
}
