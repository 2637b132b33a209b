// Package doctor runs readiness diagnostics for the harness configuration and endpoints.
package doctor

import (
	"fmt"
	"net"
	"strings"

	"github.com/rbright/reloadctl/internal/config"
	"github.com/rbright/reloadctl/internal/patch"
	"github.com/rbright/reloadctl/internal/rendezvous"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config/fixture/endpoint checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: message})

	checks = append(checks, checkPatchTarget(cfg.Config.Patch))
	checks = append(checks, checkResolvable("notify.addr", cfg.Config.Notify.Addr))
	checks = append(checks, checkBindable("await.addr", cfg.Config.Await.Addr))

	return Report{Checks: checks}
}

// checkPatchTarget verifies the fixture still carries the sentinel line.
func checkPatchTarget(cfg config.PatchConfig) Check {
	n, err := patch.Count(cfg.Path, cfg.Sentinel)
	if err != nil {
		return Check{Name: "patch.target", Pass: false, Message: err.Error()}
	}
	switch n {
	case 0:
		return Check{Name: "patch.target", Pass: false, Message: fmt.Sprintf("sentinel %q not found in %s", cfg.Sentinel, cfg.Path)}
	case 1:
		return Check{Name: "patch.target", Pass: true, Message: fmt.Sprintf("sentinel found in %s", cfg.Path)}
	default:
		return Check{Name: "patch.target", Pass: true, Message: fmt.Sprintf("sentinel found %d times in %s; all will be replaced", n, cfg.Path)}
	}
}

// checkResolvable validates that a send endpoint resolves to a UDP address.
func checkResolvable(name, addr string) Check {
	resolved, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("resolves to %s", resolved)}
}

// checkBindable binds and immediately releases the acknowledgment endpoint.
func checkBindable(name, addr string) Check {
	if err := rendezvous.Probe(addr); err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s is free to bind", addr)}
}
