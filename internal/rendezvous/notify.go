package rendezvous

import (
	"context"
	"fmt"
	"net"
)

// Notify writes a single datagram to cfg.Addr from an ephemeral socket.
//
// Delivery is not confirmed; success means the transport accepted the write.
func Notify(ctx context.Context, cfg NotifyConfig) (Sent, error) {
	if err := ctx.Err(); err != nil {
		return Sent{}, err
	}

	to, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return Sent{}, fmt.Errorf("resolve notify address %s: %w", cfg.Addr, err)
	}

	// Unconnected so an ICMP unreachable from a missing listener cannot surface as a write error.
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return Sent{}, fmt.Errorf("open notify socket: %w", err)
	}
	defer conn.Close()

	n, err := conn.WriteToUDP(cfg.Payload, to)
	if err != nil {
		return Sent{}, fmt.Errorf("send to %s: %w", to, err)
	}

	return Sent{To: to, Bytes: n}, nil
}
