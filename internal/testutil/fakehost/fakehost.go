// Package fakehost stands in for the engine process in rendezvous tests: it
// listens for reload signals and answers with acknowledgment datagrams.
package fakehost

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rbright/reloadctl/internal/rendezvous"
)

// Datagram is one signal received by the host.
type Datagram struct {
	From    *net.UDPAddr
	Payload []byte
}

// Handler decides the acknowledgment for one signal; nil means no reply.
type Handler interface {
	Handle(context.Context, Datagram) []byte
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Datagram) []byte

func (f HandlerFunc) Handle(ctx context.Context, d Datagram) []byte {
	return f(ctx, d)
}

// AckOn replies with ack whenever the received payload equals signal.
func AckOn(signal, ack string) Handler {
	return HandlerFunc(func(_ context.Context, d Datagram) []byte {
		if string(d.Payload) != signal {
			return nil
		}
		return []byte(ack)
	})
}

// Serve reads signals from conn until ctx is cancelled, sending each reply to ackAddr.
func Serve(ctx context.Context, conn *net.UDPConn, ackAddr string, handler Handler) error {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, 1024)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read signal: %w", err)
		}

		payload := append([]byte(nil), buf[:n]...)
		reply := handler.Handle(ctx, Datagram{From: from, Payload: payload})
		if reply == nil {
			continue
		}
		if _, err := rendezvous.Notify(ctx, rendezvous.NotifyConfig{Addr: ackAddr, Payload: reply}); err != nil {
			return fmt.Errorf("send acknowledgment: %w", err)
		}
	}
}
