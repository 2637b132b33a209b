package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rbright/reloadctl/internal/cli"
	"github.com/rbright/reloadctl/internal/patch"
	"github.com/rbright/reloadctl/internal/rendezvous"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Reason classifies why a command did not succeed.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUsage            Reason = "usage"
	ReasonConfig           Reason = "config"
	ReasonSentinelNotFound Reason = "sentinel_not_found"
	ReasonIO               Reason = "io"
	ReasonTransport        Reason = "transport"
	ReasonTimeout          Reason = "timeout"
	ReasonCancelled        Reason = "cancelled"
)

// Outcome is the single result shape of every command.
type Outcome struct {
	Command cli.Command
	OK      bool
	Reason  Reason
	Message string
	Err     error
}

func succeeded(cmd cli.Command, message string) Outcome {
	return Outcome{Command: cmd, OK: true, Message: message}
}

func failed(cmd cli.Command, err error) Outcome {
	return failedWith(cmd, classify(err), err)
}

func failedWith(cmd cli.Command, reason Reason, err error) Outcome {
	return Outcome{Command: cmd, Reason: reason, Message: err.Error(), Err: err}
}

// ExitCode maps the outcome onto the process exit contract.
func (o Outcome) ExitCode() int {
	switch {
	case o.OK:
		return ExitOK
	case o.Reason == ReasonUsage:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// StatusLine is the human-readable line printed for the outcome.
func (o Outcome) StatusLine() string {
	switch {
	case o.OK:
		return o.Message
	case o.Reason == ReasonTimeout:
		return "timeout: " + o.Message
	default:
		return "error: " + o.Message
	}
}

func classify(err error) Reason {
	var usageErr *cli.UsageError
	var fileErr *patch.FileError
	switch {
	case err == nil:
		return ReasonNone
	case errors.As(err, &usageErr):
		return ReasonUsage
	case errors.Is(err, rendezvous.ErrTimeout):
		return ReasonTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	case errors.Is(err, patch.ErrSentinelNotFound):
		return ReasonSentinelNotFound
	case errors.As(err, &fileErr):
		return ReasonIO
	default:
		return ReasonTransport
	}
}

func logOutcome(logger *slog.Logger, o Outcome) {
	if logger == nil {
		return
	}
	fields := []any{
		"command", o.Command,
		"ok", o.OK,
		"reason", o.Reason,
		"message", o.Message,
	}
	if !o.OK {
		logger.Error("command failed", fields...)
		return
	}
	logger.Info("command complete", fields...)
}
