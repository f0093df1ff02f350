package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redlens/redlens/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != config.DefaultListen {
		t.Errorf("listen default: got %q", cfg.Listen)
	}
	if cfg.Store != config.StoreRedis {
		t.Errorf("store default: got %q", cfg.Store)
	}
	if cfg.Workers != config.DefaultWorkers || cfg.Duration != config.DefaultDuration {
		t.Errorf("benchmark defaults: workers=%d duration=%s", cfg.Workers, cfg.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFlagOverrides(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--bench",
		"--store", "memory",
		"-c", "25",
		"-d", "45s",
		"--read-percent", "90",
		"--threshold", "e2e.p99 < 500",
		"--threshold", "total_errors == 0",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Bench {
		t.Error("bench flag not applied")
	}
	if cfg.Store != config.StoreMemory {
		t.Errorf("store: got %q", cfg.Store)
	}
	if cfg.Workers != 25 || cfg.Duration != 45*time.Second || cfg.ReadPercent != 90 {
		t.Errorf("benchmark params: %d / %s / %d", cfg.Workers, cfg.Duration, cfg.ReadPercent)
	}
	if len(cfg.Thresholds) != 2 {
		t.Errorf("thresholds: got %v", cfg.Thresholds)
	}
}

func TestLoadConfigFileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redlens.yaml")
	content := "listen: \":8080\"\nworkers: 50\nduration: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "-c", "5"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("file setting not applied: listen=%q", cfg.Listen)
	}
	if cfg.Duration != 10*time.Second {
		t.Errorf("file duration not applied: %s", cfg.Duration)
	}
	if cfg.Workers != 5 {
		t.Errorf("flag must override file: workers=%d", cfg.Workers)
	}
}

func TestLoadHelp(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"--help"}); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("expected ErrHelpRequested, got %v", err)
	}
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero workers", func(c *config.Config) { c.Workers = 0 }, "workers"},
		{"too many workers", func(c *config.Config) { c.Workers = 501 }, "workers"},
		{"sub-second duration", func(c *config.Config) { c.Duration = 500 * time.Millisecond }, "duration"},
		{"excessive duration", func(c *config.Config) { c.Duration = 301 * time.Second }, "duration"},
		{"read percent over 100", func(c *config.Config) { c.ReadPercent = 101 }, "read_percent"},
		{"negative rate", func(c *config.Config) { c.Rate = -1 }, "rate"},
		{"bad store", func(c *config.Config) { c.Store = "etcd" }, "store"},
		{"bad sample rate", func(c *config.Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.NewLoader().Load(nil)
			if err != nil {
				t.Fatal(err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error should mention %q: %v", tc.want, err)
			}
		})
	}
}
