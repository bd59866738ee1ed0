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

// Package socket is the one transport.Driver implementation in this
// module: a TCP stream, optionally wrapped in TLS, with partial-read/
// partial-write loops until the caller's gather vector is fully
// drained (§4.1).
package socket

import (
	"bufio"
	"crypto/tls"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sabouaram/ktli/certs"
	tlierr "github.com/sabouaram/ktli/errors"
	"github.com/sabouaram/ktli/transport"
)

// MinSockBuf is the minimum SO_SNDBUF/SO_RCVBUF this driver requests (§4.1).
const MinSockBuf = 5 * 1024 * 1024

// Driver is a stream-socket transport.Driver.
type Driver struct {
	tlsCfg certs.Config

	mu   sync.Mutex
	conn net.Conn
	br   *bufio.Reader
}

// New allocates a Driver. No I/O is performed until Connect (§4.1: TLS
// is not initialized until connect).
func New(tlsCfg certs.Config) *Driver {
	return &Driver{tlsCfg: tlsCfg}
}

func (d *Driver) Connect(host, port string, useTLS bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return tlierr.New(tlierr.InvalidState, "driver already connected")
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		return tlierr.New(tlierr.ConnectFailed, "resolve "+host, err)
	}
	if len(addrs) == 0 {
		addrs = []string{host}
	}

	var lastErr error
	for _, addr := range addrs {
		conn, dialErr := net.DialTimeout("tcp", net.JoinHostPort(addr, port), 10*time.Second)
		if dialErr != nil {
			lastErr = dialErr
			continue
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetWriteBuffer(MinSockBuf)
			_ = tcp.SetReadBuffer(MinSockBuf)
			_ = tcp.SetNoDelay(true)
			enableZeroCopy(tcp)
		}

		if useTLS {
			tcfg := d.tlsCfg.Build(host)
			tconn := tls.Client(conn, tcfg)
			_ = tconn.SetDeadline(time.Now().Add(10 * time.Second))
			if hsErr := tconn.Handshake(); hsErr != nil {
				_ = conn.Close()
				lastErr = tlierr.New(tlierr.ConnectFailed, "tls handshake", hsErr)
				continue
			}
			_ = tconn.SetDeadline(time.Time{})
			conn = tconn
		}

		d.conn = conn
		d.br = bufio.NewReaderSize(conn, 64*1024)
		return nil
	}

	if lastErr == nil {
		lastErr = tlierr.New(tlierr.ConnectFailed, "no reachable address for "+host)
	}
	return tlierr.New(tlierr.ConnectFailed, "connect to "+host+":"+port, lastErr)
}

// Disconnect half-closes both directions: a subsequent Receive/Poll on
// this connection must observe end-of-stream rather than block
// forever (§4.1). A plain *net.TCPConn supports a true read-side
// shutdown; TLS has none, so the read deadline is forced into the past
// instead, unblocking anything already parked in Receive/Poll.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return tlierr.New(tlierr.InvalidHandle, "driver not connected")
	}
	if tcp, ok := d.conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
		_ = tcp.CloseRead()
	}
	_ = d.conn.SetDeadline(time.Now())
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.br = nil
	if err != nil {
		return tlierr.New(tlierr.IoFailed, "close", err)
	}
	return nil
}

// Send writes the full concatenation of gather using vectored I/O
// (net.Buffers performs writev when the underlying conn supports it),
// looping through partial writes until everything is sent or a fatal
// error occurs.
func (d *Driver) Send(gather [][]byte) (int, error) {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()

	if conn == nil {
		return 0, tlierr.New(tlierr.InvalidHandle, "driver not connected")
	}

	total := 0
	for _, seg := range gather {
		total += len(seg)
	}
	if total == 0 {
		return 0, nil
	}

	buffers := net.Buffers(append([][]byte(nil), gather...))
	n, err := buffers.WriteTo(conn)
	if err != nil {
		return int(n), tlierr.New(tlierr.IoFailed, "send", err)
	}
	if int(n) != total {
		return int(n), tlierr.Newf(tlierr.IoFailed, "short send: wrote %d of %d bytes", n, total)
	}
	return int(n), nil
}

// Receive fills gather completely via io.ReadFull per segment,
// blocking until done or a fatal error/EOF occurs.
func (d *Driver) Receive(gather [][]byte) (int, error) {
	d.mu.Lock()
	br := d.br
	d.mu.Unlock()

	if br == nil {
		return 0, tlierr.New(tlierr.InvalidHandle, "driver not connected")
	}

	total := 0
	for _, seg := range gather {
		if len(seg) == 0 {
			continue
		}
		n, err := io.ReadFull(br, seg)
		total += n
		if err != nil {
			return total, tlierr.New(tlierr.IoFailed, "receive", err)
		}
	}
	return total, nil
}

// Poll waits up to timeout for at least one byte to become available,
// without consuming it (bufio.Reader.Peek), so the subsequent Receive
// observes the same bytes.
func (d *Driver) Poll(timeout time.Duration) (transport.PollResult, error) {
	d.mu.Lock()
	conn := d.conn
	br := d.br
	d.mu.Unlock()

	if conn == nil || br == nil {
		return transport.Disconnected, tlierr.New(tlierr.InvalidHandle, "driver not connected")
	}

	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	_, err := br.Peek(1)
	switch {
	case err == nil:
		return transport.DataReady, nil
	case isTimeout(err):
		return transport.Timeout, nil
	default:
		return transport.Disconnected, nil
	}
}

var _ transport.Driver = (*Driver)(nil)

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
