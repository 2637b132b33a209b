package config

import (
	"os"
	"strings"
)

const (
	EnvConfigPath     = "RELOADCTL_CONFIG"
	DefaultConfigFile = "reloadctl.toml"
)

// ResolvePath applies CLI/env/working-directory fallback rules for the config file.
// The returned bool reports whether the path was requested explicitly.
func ResolvePath(explicit string) (string, bool) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, true
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env, true
	}
	return DefaultConfigFile, false
}
