// Package fsm defines the acknowledgment wait lifecycle.
package fsm

import "fmt"

type State string

type Event string

const (
	StateWaiting  State = "waiting"
	StateReady    State = "ready"
	StateReceived State = "received"
	StateTimedOut State = "timed_out"
	StateError    State = "error"
)

const (
	EventReadable Event = "readable"
	EventElapsed  Event = "elapsed"
	EventRead     Event = "read"
	EventFail     Event = "fail"
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	switch s {
	case StateReceived, StateTimedOut, StateError:
		return true
	default:
		return false
	}
}

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateWaiting:
		switch event {
		case EventReadable:
			return StateReady, nil
		case EventElapsed:
			return StateTimedOut, nil
		case EventFail:
			return StateError, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReady:
		switch event {
		case EventRead:
			return StateReceived, nil
		case EventFail:
			return StateError, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReceived, StateTimedOut, StateError:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
