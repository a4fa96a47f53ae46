package config

import (
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Addr != DefaultAddr || c.Asset.Dir != "~/.tutord/models" || c.Download.ChunkSize != DefaultChunkSize {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Backend.Kind != "mock" || c.Backend.MaxSequenceTokens != DefaultMaxTokens || c.Server.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyDefaultsKeepsDataDirForAssets(t *testing.T) {
	c := Config{DataDir: "/var/lib/tutord/"}
	c.ApplyDefaults()
	if c.Asset.Dir != "/var/lib/tutord/models" {
		t.Fatalf("asset dir=%q", c.Asset.Dir)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c := Config{Addr: ":1", Download: DownloadConfig{AuthToken: "file"}}
	c.ApplyEnv(envMap(map[string]string{
		"TUTORD_ADDR":           ":2",
		"TUTORD_AUTH_TOKEN":     "hf_env",
		"TUTORD_LOG_LEVEL":      "warn",
		"TUTORD_MIN_SIZE_BYTES": "42",
		"TUTORD_BACKEND":        "llama",
	}))
	if c.Addr != ":2" || c.Download.AuthToken != "hf_env" || c.LogLevel != "warn" || c.Asset.MinSizeBytes != 42 || c.Backend.Kind != "llama" {
		t.Fatalf("unexpected cfg: %+v", c)
	}
	// empty token in the environment clears the file value
	c.ApplyEnv(envMap(map[string]string{"TUTORD_AUTH_TOKEN": ""}))
	if c.Download.AuthToken != "" {
		t.Fatalf("expected token cleared")
	}
}

func TestValidate(t *testing.T) {
	base := Config{}
	base.ApplyDefaults()

	bad := []func(c *Config){
		func(c *Config) { c.Asset.FileName = "../escape.task" },
		func(c *Config) { c.Asset.MinSizeBytes = -1 },
		func(c *Config) { c.Asset.SourceURL = "ftp://host/file" },
		func(c *Config) { c.Asset.SHA256 = "abc" },
		func(c *Config) { c.Backend.Kind = "tflite" },
		func(c *Config) { c.Backend.ThreadHint = -2 },
		func(c *Config) { c.LogLevel = "chatty" },
	}
	for i, mut := range bad {
		c := base
		mut(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}
}
