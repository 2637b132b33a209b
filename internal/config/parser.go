package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type tomlConfig struct {
	Notify *tomlNotify `toml:"notify"`
	Await  *tomlAwait  `toml:"await"`
	Patch  *tomlPatch  `toml:"patch"`
}

type tomlNotify struct {
	Addr    *string `toml:"addr"`
	Payload *string `toml:"payload"`
}

type tomlAwait struct {
	Addr       *string `toml:"addr"`
	Timeout    *string `toml:"timeout"`
	BufferSize *int    `toml:"buffer_size"`
}

type tomlPatch struct {
	Path     *string `toml:"path"`
	Sentinel *string `toml:"sentinel"`
	From     *string `toml:"from"`
	To       *string `toml:"to"`
}

// Parse decodes TOML content over base and validates the result.
//
// Keys the decoder does not recognize are reported as warnings rather than errors.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg := base
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(cfg)
		if err != nil {
			return Config{}, nil, err
		}
		return cfg, warnings, nil
	}

	var raw tomlConfig
	meta, err := toml.Decode(content, &raw)
	if err != nil {
		return Config{}, nil, err
	}

	warnings := make([]Warning, 0)
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("unknown key %q ignored", key.String())})
	}

	if n := raw.Notify; n != nil {
		assignString(&cfg.Notify.Addr, n.Addr)
		assignString(&cfg.Notify.Payload, n.Payload)
	}
	if a := raw.Await; a != nil {
		assignString(&cfg.Await.Addr, a.Addr)
		if a.Timeout != nil {
			timeout, err := time.ParseDuration(strings.TrimSpace(*a.Timeout))
			if err != nil {
				return Config{}, nil, fmt.Errorf("await.timeout: %w", err)
			}
			cfg.Await.Timeout = timeout
		}
		if a.BufferSize != nil {
			cfg.Await.BufferSize = *a.BufferSize
		}
	}
	if p := raw.Patch; p != nil {
		assignString(&cfg.Patch.Path, p.Path)
		if p.Sentinel != nil {
			// Matching compares trimmed lines, so the sentinel is stored trimmed too.
			cfg.Patch.Sentinel = strings.TrimSpace(*p.Sentinel)
		}
		if p.From != nil {
			cfg.Patch.From = *p.From
		}
		if p.To != nil {
			cfg.Patch.To = *p.To
		}
	}

	validated, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validated...), nil
}

func assignString(dst *string, src *string) {
	if src == nil {
		return
	}
	*dst = strings.TrimSpace(*src)
}
