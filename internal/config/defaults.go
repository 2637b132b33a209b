package config

import "time"

const (
	DefaultNotifyAddr = "127.0.0.1:1337"
	DefaultAckAddr    = "127.0.0.1:1338"
	DefaultPayload    = "reload"
	DefaultTimeout    = 20 * time.Second
	DefaultBufferSize = 1024

	DefaultPatchPath = "../../rust/src/lib.rs"
	DefaultSentinel  = "fn get_number(&self) -> i64 { 100 }"
	DefaultFrom      = "100"
	DefaultTo        = "777"
)

// Default returns the protocol configuration used when no file is present.
func Default() Config {
	return Config{
		Notify: NotifyConfig{
			Addr:    DefaultNotifyAddr,
			Payload: DefaultPayload,
		},
		Await: AwaitConfig{
			Addr:       DefaultAckAddr,
			Timeout:    DefaultTimeout,
			BufferSize: DefaultBufferSize,
		},
		Patch: PatchConfig{
			Path:     DefaultPatchPath,
			Sentinel: DefaultSentinel,
			From:     DefaultFrom,
			To:       DefaultTo,
		},
	}
}
