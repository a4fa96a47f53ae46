// Package config loads tutord settings from a file, the environment and
// built-in defaults, in that order of precedence (flags are applied by the
// caller on top).
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultAddr         = ":8080"
	DefaultDataDir      = "~/.tutord"
	DefaultFileName     = "gemma-3n-E2B-it-int4.task"
	DefaultSourceURL    = "https://huggingface.co/google/gemma-3n-E2B-it-litert-preview/resolve/main/gemma-3n-E2B-it-int4.task"
	DefaultMinSizeBytes = 900 * 1_000_000
	DefaultChunkSize    = 64 * 1024
	DefaultLogLevel     = "info"
	DefaultBackend      = "mock"
	DefaultMaxTokens    = 1024
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	DataDir  string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	Asset    AssetConfig    `json:"asset" yaml:"asset" toml:"asset"`
	Download DownloadConfig `json:"download" yaml:"download" toml:"download"`
	Backend  BackendConfig  `json:"backend" yaml:"backend" toml:"backend"`
	Server   ServerConfig   `json:"server" yaml:"server" toml:"server"`
}

// AssetConfig describes the model file.
type AssetConfig struct {
	// Dir defaults to <data_dir>/models.
	Dir          string `json:"dir" yaml:"dir" toml:"dir"`
	FileName     string `json:"file_name" yaml:"file_name" toml:"file_name"`
	SourceURL    string `json:"source_url" yaml:"source_url" toml:"source_url"`
	MinSizeBytes int64  `json:"min_size_bytes" yaml:"min_size_bytes" toml:"min_size_bytes"`
	SHA256       string `json:"sha256" yaml:"sha256" toml:"sha256"`
}

// DownloadConfig tunes the HTTP transfer.
type DownloadConfig struct {
	AuthToken string `json:"auth_token" yaml:"auth_token" toml:"auth_token"`
	ChunkSize int    `json:"chunk_size" yaml:"chunk_size" toml:"chunk_size"`
	UserAgent string `json:"user_agent" yaml:"user_agent" toml:"user_agent"`
	// ConnectTimeout bounds dialing and response headers, not the body.
	ConnectTimeout Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
}

// BackendConfig selects and tunes the inference backend.
type BackendConfig struct {
	Kind                  string   `json:"kind" yaml:"kind" toml:"kind"`
	UseAcceleratedBackend bool     `json:"use_accelerated_backend" yaml:"use_accelerated_backend" toml:"use_accelerated_backend"`
	MaxSequenceTokens     int      `json:"max_sequence_tokens" yaml:"max_sequence_tokens" toml:"max_sequence_tokens"`
	ThreadHint            int      `json:"thread_hint" yaml:"thread_hint" toml:"thread_hint"`
	MockInitDelay         Duration `json:"mock_init_delay" yaml:"mock_init_delay" toml:"mock_init_delay"`
	MockTokenDelay        Duration `json:"mock_token_delay" yaml:"mock_token_delay" toml:"mock_token_delay"`
}

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled     bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	GenerateTimeout Duration `json:"generate_timeout" yaml:"generate_timeout" toml:"generate_timeout"`
	// AuthToken, when set, is required as a bearer token on mutating routes.
	AuthToken string `json:"auth_token" yaml:"auth_token" toml:"auth_token"`
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Asset.Dir == "" {
		c.Asset.Dir = strings.TrimRight(c.DataDir, "/") + "/models"
	}
	if c.Asset.FileName == "" {
		c.Asset.FileName = DefaultFileName
	}
	if c.Asset.SourceURL == "" {
		c.Asset.SourceURL = DefaultSourceURL
	}
	if c.Asset.MinSizeBytes == 0 {
		c.Asset.MinSizeBytes = DefaultMinSizeBytes
	}
	if c.Download.ChunkSize == 0 {
		c.Download.ChunkSize = DefaultChunkSize
	}
	if c.Download.ConnectTimeout == 0 {
		c.Download.ConnectTimeout = Duration(30 * time.Second)
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = DefaultBackend
	}
	if c.Backend.MaxSequenceTokens == 0 {
		c.Backend.MaxSequenceTokens = DefaultMaxTokens
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// ApplyEnv overrides fields from TUTORD_* variables. lookup is os.LookupEnv
// outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TUTORD_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("TUTORD_DATA_DIR"); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup("TUTORD_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("TUTORD_AUTH_TOKEN"); ok {
		c.Download.AuthToken = v
	}
	if v, ok := lookup("TUTORD_BACKEND"); ok && v != "" {
		c.Backend.Kind = v
	}
	if v, ok := lookup("TUTORD_MIN_SIZE_BYTES"); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Asset.MinSizeBytes = n
		}
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Asset.FileName == "" || strings.ContainsAny(c.Asset.FileName, `/\`) {
		return fmt.Errorf("asset.file_name must be a bare file name, got %q", c.Asset.FileName)
	}
	if c.Asset.MinSizeBytes < 0 {
		return fmt.Errorf("asset.min_size_bytes must be >= 0")
	}
	if c.Asset.SourceURL != "" {
		u, err := url.Parse(c.Asset.SourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("asset.source_url must be an http(s) URL, got %q", c.Asset.SourceURL)
		}
	}
	if s := c.Asset.SHA256; s != "" && len(s) != 64 {
		return fmt.Errorf("asset.sha256 must be 64 hex characters")
	}
	if c.Download.ChunkSize < 0 {
		return fmt.Errorf("download.chunk_size must be >= 0")
	}
	switch strings.ToLower(c.Backend.Kind) {
	case "", "mock", "llama":
	default:
		return fmt.Errorf("backend.kind must be mock or llama, got %q", c.Backend.Kind)
	}
	if c.Backend.MaxSequenceTokens < 0 || c.Backend.ThreadHint < 0 {
		return fmt.Errorf("backend.max_sequence_tokens and backend.thread_hint must be >= 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("log_level must be debug|info|warn|error|off, got %q", c.LogLevel)
	}
	return nil
}
