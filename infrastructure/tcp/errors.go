package tcp

import (
	stderrors "errors"
	"io"
	"net"
	"syscall"
)

// isClosedConnError reports errors expected while a connection is going away.
func isClosedConnError(err error) bool {
	return stderrors.Is(err, net.ErrClosed) ||
		stderrors.Is(err, io.EOF) ||
		stderrors.Is(err, io.ErrClosedPipe) ||
		stderrors.Is(err, syscall.EPIPE) ||
		stderrors.Is(err, syscall.ECONNRESET)
}
