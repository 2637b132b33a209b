package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateEndpoint("notify.addr", cfg.Notify.Addr); err != nil {
		return nil, err
	}
	if err := validateEndpoint("await.addr", cfg.Await.Addr); err != nil {
		return nil, err
	}
	if cfg.Notify.Payload == "" {
		return nil, fmt.Errorf("notify.payload must not be empty")
	}
	if cfg.Await.Timeout <= 0 {
		return nil, fmt.Errorf("await.timeout must be > 0")
	}
	if cfg.Await.BufferSize <= 0 || cfg.Await.BufferSize > 65535 {
		return nil, fmt.Errorf("await.buffer_size must be within 1..65535")
	}
	if strings.TrimSpace(cfg.Patch.Path) == "" {
		return nil, fmt.Errorf("patch.path must not be empty")
	}
	if strings.TrimSpace(cfg.Patch.Sentinel) == "" {
		return nil, fmt.Errorf("patch.sentinel must not be empty")
	}
	if cfg.Patch.From == "" {
		return nil, fmt.Errorf("patch.from must not be empty")
	}
	if !strings.Contains(cfg.Patch.Sentinel, cfg.Patch.From) {
		return nil, fmt.Errorf("patch.sentinel must contain patch.from %q", cfg.Patch.From)
	}

	if cfg.Notify.Addr == cfg.Await.Addr {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("notify.addr and await.addr are both %s", cfg.Notify.Addr)})
	}
	if cfg.Patch.From == cfg.Patch.To {
		warnings = append(warnings, Warning{Message: "patch.from equals patch.to; replace will not change the file"})
	}

	return warnings, nil
}

func validateEndpoint(name, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s must be host:port: %w", name, err)
	}
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s port must be within 1..65535", name)
	}
	return nil
}
