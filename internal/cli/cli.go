package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

type Command string

const (
	CommandAwait   Command = "await"
	CommandReplace Command = "replace"
	CommandNotify  Command = "notify"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// UsageError marks a malformed invocation.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

type Parsed struct {
	Command    Command
	ConfigPath string
	Timeout    time.Duration
	ShowHelp   bool
}

type leaf struct{}

type grammar struct {
	Config  string        `help:"Config file path." placeholder:"PATH"`
	Timeout time.Duration `help:"Override the acknowledgment wait (e.g. 20s)." placeholder:"DURATION"`

	Await   leaf `cmd:"" help:"Wait for one acknowledgment datagram from the host."`
	Replace leaf `cmd:"" help:"Rewrite the sentinel line of the target source file."`
	Notify  leaf `cmd:"" help:"Send the reload signal to the host."`
	Doctor  leaf `cmd:"" help:"Check harness configuration and endpoints."`
	Version leaf `cmd:"" help:"Print version information."`
}

// Parse validates args against the command grammar.
//
// Help and version flags short-circuit only when they stand alone or accompany
// an otherwise valid invocation, so a malformed command line stays a usage error.
func Parse(args []string) (Parsed, error) {
	var showHelp, showVersion bool
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			showHelp = true
		case "--version":
			showVersion = true
		default:
			rest = append(rest, arg)
		}
	}

	if len(rest) == 0 {
		switch {
		case showHelp:
			return Parsed{Command: CommandHelp, ShowHelp: true}, nil
		case showVersion:
			return Parsed{Command: CommandVersion}, nil
		}
	}

	var g grammar
	parser, err := kong.New(&g, kong.Name("reloadctl"), kong.NoDefaultHelp())
	if err != nil {
		return Parsed{}, fmt.Errorf("build command grammar: %w", err)
	}

	ctx, err := parser.Parse(rest)
	if err != nil {
		return Parsed{}, &UsageError{Err: err}
	}
	if g.Timeout < 0 {
		return Parsed{}, &UsageError{Err: errors.New("--timeout must not be negative")}
	}

	switch {
	case showHelp:
		return Parsed{Command: CommandHelp, ShowHelp: true}, nil
	case showVersion:
		return Parsed{Command: CommandVersion}, nil
	}

	return Parsed{
		Command:    Command(ctx.Command()),
		ConfigPath: g.Config,
		Timeout:    g.Timeout,
	}, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--timeout DURATION] <command>

Commands:
  await     Wait for one acknowledgment datagram from the host
  replace   Rewrite the sentinel line of the target source file
  notify    Send the reload signal to the host
  doctor    Check harness configuration and endpoints
  version   Print version information

Flags:
  --config PATH         Config file path (default: $RELOADCTL_CONFIG or ./reloadctl.toml)
  --timeout DURATION    Override await.timeout
  -h, --help            Show help
  --version             Show version

Exit codes:
  0  success
  1  operation failed
  2  usage error
`, binaryName)
}
