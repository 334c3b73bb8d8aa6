// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkDir is where logos, rendered images, and token documents are
	// staged before publication. Defaults to the OS temp directory at Load.
	WorkDir string `koanf:"work_dir"`

	// QueueSize bounds the in-memory mint job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of mint workers.
	WorkerCount int `koanf:"worker_count"`

	// FetchTimeoutMS bounds a single logo download.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// PublishTimeoutMS bounds a single storage publish call.
	PublishTimeoutMS int `koanf:"publish_timeout_ms"`

	// MaxAssetBytes caps the size of a fetched logo.
	MaxAssetBytes int64 `koanf:"max_asset_bytes"`

	// StorageAPIURL is the content-addressed storage API endpoint.
	StorageAPIURL string `koanf:"storage_api_url"`

	// StorageUsername and StoragePassword authenticate against the storage
	// API. Both are required.
	StorageUsername string `koanf:"storage_username"`
	StoragePassword string `koanf:"storage_password"`

	// GatewayBase is the public gateway prefix for published content.
	GatewayBase string `koanf:"gateway_base"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU() * 2,
		FetchTimeoutMS:   15_000,
		PublishTimeoutMS: 60_000,
		MaxAssetBytes:    16 << 20,
		StorageAPIURL:    "https://ipfs.infura.io:5001",
		GatewayBase:      "https://ipfs.io",
	}
}
