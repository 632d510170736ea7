package config

import (
	"path/filepath"
	"testing"

	"github.com/gdmirror/gdmirror/internal/types"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.DefaultOutputFormat != types.OutputFormatJSON {
		t.Errorf("DefaultOutputFormat = %s", cfg.DefaultOutputFormat)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad output format", func(c *Config) { c.DefaultOutputFormat = "xml" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }},
		{"tiny retry delay", func(c *Config) { c.RetryBaseDelay = 50 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", t.TempDir())
	t.Setenv(EnvPrefix+"DEFAULT_PROFILE", "ci")
	t.Setenv(EnvPrefix+"OUTPUT_FORMAT", "table")
	t.Setenv(EnvPrefix+"MAX_RETRIES", "2")
	t.Setenv(EnvPrefix+"CONCURRENCY", "8")
	t.Setenv(EnvPrefix+"HISTORY_ENABLED", "no")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultProfile != "ci" {
		t.Errorf("DefaultProfile = %q", cfg.DefaultProfile)
	}
	if cfg.DefaultOutputFormat != types.OutputFormatTable {
		t.Errorf("DefaultOutputFormat = %s", cfg.DefaultOutputFormat)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if cfg.HistoryEnabled {
		t.Error("HistoryEnabled should be false")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"CONFIG_DIR", dir)

	cfg := DefaultConfig()
	cfg.DefaultProfile = "saved"
	cfg.Concurrency = 6
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DefaultProfile != "saved" || loaded.Concurrency != 6 {
		t.Errorf("round trip: %+v", loaded)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ConfigFileName) {
		t.Errorf("config path = %q", path)
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "yes", "on", " TRUE "} {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false", v)
		}
	}
	for _, v := range []string{"false", "0", "no", "off", ""} {
		if parseBool(v) {
			t.Errorf("parseBool(%q) = true", v)
		}
	}
}
