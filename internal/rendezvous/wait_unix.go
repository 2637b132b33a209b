//go:build unix

package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// pollsReadiness reports whether waitReadable observes a queued datagram
// before the read happens.
const pollsReadiness = true

// waitReadable polls the socket until it has a datagram queued, the deadline
// passes, or ctx is cancelled. It never consumes data.
func waitReadable(ctx context.Context, conn *net.UDPConn, deadline time.Time) (bool, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return false, fmt.Errorf("access socket: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		slice := min(remaining, pollSlice)

		var (
			n       int
			pollErr error
		)
		ctrlErr := raw.Control(func(fd uintptr) {
			fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
			n, pollErr = unix.Poll(fds, int(slice.Milliseconds())+1)
			if n > 0 && fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 && fds[0].Revents&unix.POLLIN == 0 {
				pollErr = fmt.Errorf("socket error (revents=%#x)", fds[0].Revents)
			}
		})
		if ctrlErr != nil {
			return false, fmt.Errorf("access socket: %w", ctrlErr)
		}
		if pollErr != nil {
			if errors.Is(pollErr, unix.EINTR) {
				continue
			}
			return false, fmt.Errorf("poll: %w", pollErr)
		}
		if n > 0 {
			return true, nil
		}
	}
}
