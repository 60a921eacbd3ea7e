//go:build !unix

package bench

import "syscall"

func setSocketOptions(network, address string, conn syscall.RawConn) error {
	return nil
}
