package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/reloadctl/internal/cli"
	"github.com/rbright/reloadctl/internal/config"
	"github.com/rbright/reloadctl/internal/doctor"
	"github.com/rbright/reloadctl/internal/logging"
	"github.com/rbright/reloadctl/internal/patch"
	"github.com/rbright/reloadctl/internal/rendezvous"
	"github.com/rbright/reloadctl/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stdout, "error: %v\n\n", err)
		fmt.Fprint(r.Stdout, cli.HelpText("reloadctl"))
		return ExitUsage
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("reloadctl"))
		return ExitOK
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return ExitOK
	}

	logRuntime, err := logging.New()
	if err != nil {
		// The log file is diagnostics only; it never blocks a command.
		fmt.Fprintf(r.Stderr, "warning: logging disabled: %v\n", err)
		logRuntime = logging.Discard()
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		return r.finish(logger, failedWith(parsed.Command, ReasonConfig, err))
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	cfg := cfgLoaded.Config
	if parsed.Timeout > 0 {
		cfg.Await.Timeout = parsed.Timeout
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"config_exists", cfgLoaded.Exists,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(config.Loaded{Path: cfgLoaded.Path, Config: cfg, Exists: cfgLoaded.Exists})
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return ExitOK
		}
		return ExitFailure
	case cli.CommandAwait:
		return r.finish(logger, commandAwait(ctx, cfg.Await, logger))
	case cli.CommandReplace:
		return r.finish(logger, commandReplace(cfg.Patch))
	case cli.CommandNotify:
		return r.finish(logger, commandNotify(ctx, cfg.Notify))
	default:
		fmt.Fprintf(r.Stdout, "error: unsupported command %q\n", parsed.Command)
		return ExitUsage
	}
}

// finish prints the outcome status and the terminal Done line on success.
func (r Runner) finish(logger *slog.Logger, o Outcome) int {
	logOutcome(logger, o)
	if o.OK {
		if o.Message != "" {
			fmt.Fprintln(r.Stdout, o.StatusLine())
		}
		fmt.Fprintln(r.Stdout, "Done")
		return o.ExitCode()
	}
	fmt.Fprintln(r.Stderr, o.StatusLine())
	return o.ExitCode()
}

func commandAwait(ctx context.Context, cfg config.AwaitConfig, logger *slog.Logger) Outcome {
	ack, err := rendezvous.Await(ctx, rendezvous.AwaitConfig{
		Addr:       cfg.Addr,
		Timeout:    cfg.Timeout,
		BufferSize: cfg.BufferSize,
	}, logger)
	logger.Debug("await finished", "state", ack.State, "elapsed_ms", ack.Elapsed.Milliseconds())
	if err != nil {
		o := failed(cli.CommandAwait, err)
		if o.Reason == ReasonTimeout {
			o.Message = fmt.Sprintf("no acknowledgment on %s within %s", cfg.Addr, cfg.Timeout)
		}
		return o
	}
	return succeeded(cli.CommandAwait, fmt.Sprintf("Received %d bytes from %s", ack.Size, ack.From))
}

func commandReplace(cfg config.PatchConfig) Outcome {
	result, err := patch.Apply(cfg.Path, patch.Rule{
		Sentinel: cfg.Sentinel,
		From:     cfg.From,
		To:       cfg.To,
	})
	if err != nil {
		return failed(cli.CommandReplace, err)
	}
	return succeeded(cli.CommandReplace, fmt.Sprintf("Replaced %d line(s) in %s", result.Matches, result.Path))
}

func commandNotify(ctx context.Context, cfg config.NotifyConfig) Outcome {
	sent, err := rendezvous.Notify(ctx, rendezvous.NotifyConfig{
		Addr:    cfg.Addr,
		Payload: []byte(cfg.Payload),
	})
	if err != nil {
		return failed(cli.CommandNotify, err)
	}
	return succeeded(cli.CommandNotify, fmt.Sprintf("Sent %d bytes to %s", sent.Bytes, sent.To))
}
