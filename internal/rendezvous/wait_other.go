//go:build !unix

package rendezvous

import (
	"context"
	"net"
	"time"
)

// pollsReadiness reports whether waitReadable observes a queued datagram
// before the read happens.
const pollsReadiness = false

// waitReadable arms a read deadline; the subsequent read reports the timeout.
// Cancellation is only observed before the read starts on these platforms.
func waitReadable(ctx context.Context, conn *net.UDPConn, deadline time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !time.Now().Before(deadline) {
		return false, nil
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}
	return true, nil
}
