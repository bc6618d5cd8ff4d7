package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if !cfg.Modules.Crawler || !cfg.Modules.Subdomains || !cfg.Modules.Wayback {
		t.Error("expected core modules enabled by default")
	}
	if cfg.Modules.Scraping {
		t.Error("scraping should be disabled by default")
	}
	if cfg.Limits.MaxDNS != DefaultMaxDNS {
		t.Errorf("MaxDNS = %d, want %d", cfg.Limits.MaxDNS, DefaultMaxDNS)
	}
	if cfg.Limits.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.Limits.MaxPages, DefaultMaxPages)
	}
	if cfg.Timeouts.HTTP != DefaultHTTPTimeout {
		t.Errorf("HTTP timeout = %v, want %v", cfg.Timeouts.HTTP, DefaultHTTPTimeout)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent is empty")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"example.com"}
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.Limits.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero wayback pages",
			mutate:  func(c *Config) { c.Limits.WaybackPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "negative max scripts",
			mutate:  func(c *Config) { c.Limits.MaxScripts = -1 },
			wantErr: ErrInvalidLimit,
		},
		{
			name:    "zero dns timeout",
			mutate:  func(c *Config) { c.Timeouts.DNS = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("merges file over defaults", func(t *testing.T) {
		t.Parallel()

		content := `
modules:
  scraping: true
  wayback: false
limits:
  max_pages: 50
timeouts:
  dns: 2
user_agent: "custom-agent/2.0"
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := NewConfig()
		if err := LoadConfigFile(path, cfg); err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		if !cfg.Modules.Scraping {
			t.Error("scraping not enabled from file")
		}
		if cfg.Modules.Wayback {
			t.Error("wayback not disabled from file")
		}
		// Modules absent from the file keep their defaults.
		if !cfg.Modules.Crawler {
			t.Error("crawler default lost during merge")
		}
		if cfg.Limits.MaxPages != 50 {
			t.Errorf("MaxPages = %d, want 50", cfg.Limits.MaxPages)
		}
		if cfg.Limits.MaxDNS != DefaultMaxDNS {
			t.Errorf("MaxDNS = %d, want default %d", cfg.Limits.MaxDNS, DefaultMaxDNS)
		}
		if cfg.Timeouts.DNS != 2*time.Second {
			t.Errorf("DNS timeout = %v, want 2s", cfg.Timeouts.DNS)
		}
		if cfg.UserAgent != "custom-agent/2.0" {
			t.Errorf("UserAgent = %q", cfg.UserAgent)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"), cfg)
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("modules: [not a map"), 0600); err != nil {
			t.Fatal(err)
		}
		cfg := NewConfig()
		if err := LoadConfigFile(path, cfg); err == nil {
			t.Error("LoadConfigFile() succeeded on invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q", path, got)
		}
	})

	t.Run("missing explicit path yields empty", func(t *testing.T) {
		if got := FindConfigFile("/no/such/file"); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("XDGDataDir() = %q, want suffix %q", dir, AppName)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("XDGConfigDir() = %q, want suffix %q", dir, AppName)
	}
}
