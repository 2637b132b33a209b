package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/rbright/reloadctl/internal/fsm"
)

// pollSlice bounds each readiness wait so context cancellation is observed promptly.
const pollSlice = 100 * time.Millisecond

// Await binds cfg.Addr, waits up to cfg.Timeout for one datagram, and reads it.
//
// The socket is bound exclusively for the duration of the call and closed on every path.
// Exactly one datagram is consumed; anything larger than cfg.BufferSize is truncated.
func Await(ctx context.Context, cfg AwaitConfig, logger *slog.Logger) (Ack, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := machine{state: fsm.StateWaiting, logger: logger}
	started := time.Now()
	ack := func() Ack {
		return Ack{State: m.state, Elapsed: time.Since(started)}
	}

	conn, err := bind(cfg.Addr)
	if err != nil {
		m.fire(fsm.EventFail)
		return ack(), err
	}
	defer conn.Close()

	logger.Debug("awaiting acknowledgment", "addr", conn.LocalAddr().String(), "timeout", cfg.Timeout.String())

	ready, err := waitReadable(ctx, conn, started.Add(cfg.Timeout))
	if err != nil {
		m.fire(fsm.EventFail)
		return ack(), err
	}
	if !ready {
		m.fire(fsm.EventElapsed)
		return ack(), fmt.Errorf("%w after %s", ErrTimeout, cfg.Timeout)
	}

	if pollsReadiness {
		m.fire(fsm.EventReadable)
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = 1024
	}

	n, from, err := m.receive(conn, make([]byte, size))
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return ack(), fmt.Errorf("%w after %s", ErrTimeout, cfg.Timeout)
		}
		return ack(), fmt.Errorf("receive on %s: %w", cfg.Addr, err)
	}

	result := ack()
	result.From = from
	result.Size = n
	return result, nil
}

// receive performs the single read and records its outcome on the machine.
func (m *machine) receive(conn *net.UDPConn, buf []byte) (int, *net.UDPAddr, error) {
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) && m.state == fsm.StateWaiting {
			// Without poll(2) the window end is detected by the read itself.
			m.fire(fsm.EventElapsed)
			return 0, nil, ErrTimeout
		}
		m.fire(fsm.EventFail)
		return 0, nil, err
	}
	if m.state == fsm.StateWaiting {
		m.fire(fsm.EventReadable)
	}
	m.fire(fsm.EventRead)
	return n, from, nil
}

// bind opens the acknowledgment socket without address reuse.
func bind(addr string) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve await address %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, fmt.Errorf("bind %s: address already in use: %w", addr, err)
		}
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return conn, nil
}

// Probe reports whether addr can currently be bound for acknowledgments.
func Probe(addr string) error {
	conn, err := bind(addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

type machine struct {
	state  fsm.State
	logger *slog.Logger
}

func (m *machine) fire(event fsm.Event) {
	next, err := fsm.Transition(m.state, event)
	if err != nil {
		m.logger.Warn("await state transition rejected", "state", m.state, "event", event, "error", err.Error())
		return
	}
	m.logger.Debug("await state", "from", m.state, "event", event, "to", next)
	m.state = next
}
