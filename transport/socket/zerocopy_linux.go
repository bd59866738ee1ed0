//go:build linux

package socket

import (
	"net"

	"golang.org/x/sys/unix"
)

// enableZeroCopy sets SO_ZEROCOPY on the socket when the kernel
// supports it (5.4+). Send still goes through net.Buffers; this only
// lets the kernel avoid a copy for large value payloads when it can.
// Grounded on the per-OS socket-option file split used for sockstats
// collection in the runZeroInc examples.
func enableZeroCopy(tcp *net.TCPConn) {
	raw, err := tcp.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ZEROCOPY, 1)
	})
}
