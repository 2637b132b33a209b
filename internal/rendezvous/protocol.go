// Package rendezvous implements the UDP reload signal and acknowledgment exchange
// between the harness and the host process.
package rendezvous

import (
	"errors"
	"net"
	"time"

	"github.com/rbright/reloadctl/internal/fsm"
)

// ErrTimeout reports that no acknowledgment arrived within the wait window.
var ErrTimeout = errors.New("timeout waiting for acknowledgment")

// NotifyConfig is the host-bound signal target.
type NotifyConfig struct {
	Addr    string
	Payload []byte
}

// AwaitConfig is the harness-bound acknowledgment endpoint.
type AwaitConfig struct {
	Addr       string
	Timeout    time.Duration
	BufferSize int
}

// Sent describes one delivered-to-transport datagram.
type Sent struct {
	To    *net.UDPAddr
	Bytes int
}

// Ack describes the outcome of one acknowledgment wait.
type Ack struct {
	From    *net.UDPAddr
	Size    int
	State   fsm.State
	Elapsed time.Duration
}
