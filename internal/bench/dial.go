package bench

import (
	"net"
)

// newDialer returns the dialer all workers share. Platform specific
// socket options are applied in setSocketOptions.
func newDialer() *net.Dialer {
	return &net.Dialer{Control: setSocketOptions}
}

// closeConn shuts down both directions before releasing the socket.
func closeConn(conn net.Conn) error {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.CloseWrite()
		tc.CloseRead()
	}
	return conn.Close()
}
