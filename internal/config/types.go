// Package config resolves, parses, validates, and defaults reloadctl configuration.
package config

import "time"

// Config is the fully materialized harness configuration.
type Config struct {
	Notify NotifyConfig
	Await  AwaitConfig
	Patch  PatchConfig
}

// NotifyConfig describes the host-bound reload signal.
type NotifyConfig struct {
	Addr    string
	Payload string
}

// AwaitConfig describes the harness-bound acknowledgment endpoint.
type AwaitConfig struct {
	Addr       string
	Timeout    time.Duration
	BufferSize int
}

// PatchConfig describes the sentinel line rewritten by the replace command.
type PatchConfig struct {
	Path     string
	Sentinel string
	From     string
	To       string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
