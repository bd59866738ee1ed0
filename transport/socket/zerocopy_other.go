//go:build !linux

package socket

import "net"

// enableZeroCopy is a no-op outside Linux: SO_ZEROCOPY has no
// equivalent on the other platforms this driver targets.
func enableZeroCopy(tcp *net.TCPConn) {}
