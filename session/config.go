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

import (
	"time"

	libval "github.com/go-playground/validator/v10"

	"github.com/sabouaram/ktli/certs"
	tlierr "github.com/sabouaram/ktli/errors"
)

// Config is everything a session needs to open a connection and
// authenticate traffic on it (§4.1, §4.2).
type Config struct {
	// Host is the drive's address; either hostname or literal IP.
	Host string `mapstructure:"host" json:"host" yaml:"host" toml:"host" validate:"required"`

	// Port is the drive's listening port as a string, matching
	// transport.Driver.Connect's signature.
	Port string `mapstructure:"port" json:"port" yaml:"port" toml:"port" validate:"required,numeric"`

	// UseTLS selects the TLS-wrapped control/data port.
	UseTLS bool `mapstructure:"use_tls" json:"use_tls" yaml:"use_tls" toml:"use_tls"`

	// TLS carries the dial-side TLS options when UseTLS is set.
	TLS certs.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	// Identity is the HMAC key identifier the drive expects on every message.
	Identity int64 `mapstructure:"identity" json:"identity" yaml:"identity" toml:"identity" validate:"required"`

	// Secret is the HMAC-SHA1 key associated with Identity.
	Secret []byte `mapstructure:"secret" json:"secret" yaml:"secret" toml:"secret" validate:"required,min=1"`

	// ClusterVersion is the caller's last-known cluster version, or -1
	// if unknown; the drive rejects requests carrying a stale value.
	ClusterVersion int64 `mapstructure:"cluster_version" json:"cluster_version" yaml:"cluster_version" toml:"cluster_version"`

	// ConnectTimeout is stored but not read by Client.Connect or the
	// socket driver, which dials and handshakes with its own fixed timeout.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`

	// OperationTimeout is the default per-Operation deadline when the
	// caller does not override one (§4.6 step 3).
	OperationTimeout time.Duration `mapstructure:"operation_timeout" json:"operation_timeout" yaml:"operation_timeout" toml:"operation_timeout"`

	// TableCapacity is stored but not read by client.New; the session
	// table's size comes from New's tableCapacity argument (§4.2).
	TableCapacity int `mapstructure:"table_capacity" json:"table_capacity" yaml:"table_capacity" toml:"table_capacity"`
}

// DefaultOperationTimeout matches the sender's deadline-stamping rule (§4.5).
const DefaultOperationTimeout = 30 * time.Second

// Validate checks the struct tags above and fills in the documented defaults.
func (c *Config) Validate() tlierr.Error {
	if err := libval.New().Struct(c); err != nil {
		return tlierr.New(tlierr.InvalidArgument, "session config validation", err)
	}
	if c.ClusterVersion == 0 {
		c.ClusterVersion = -1
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	return nil
}
