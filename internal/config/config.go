// Package config loads and validates redlens configuration from a config
// file and command-line flags. Flags win over file settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// StoreKind selects the backing store implementation.
type StoreKind string

const (
	StoreRedis  StoreKind = "redis"
	StoreMemory StoreKind = "memory"
)

// Benchmark bounds enforced at this boundary. The load generator itself
// trusts its inputs.
const (
	MaxWorkers       = 500
	MaxDuration      = 300 * time.Second
	MaxReadPercent   = 100
	DefaultWorkers   = 10
	DefaultDuration  = 30 * time.Second
	DefaultReadPct   = 70
	DefaultRedisURL  = "redis://127.0.0.1:6379/0"
	DefaultListen    = ":3000"
	DefaultStaticDir = "static"
)

type Config struct {
	// Server
	Listen    string    `mapstructure:"listen"`
	RedisURL  string    `mapstructure:"redis_url"`
	Store     StoreKind `mapstructure:"store"`
	StaticDir string    `mapstructure:"static_dir"`
	LockFile  string    `mapstructure:"lock_file"`

	// Seeding
	SkipSeed    bool   `mapstructure:"skip_seed"`
	SeedProfile string `mapstructure:"seed_profile"`

	// Benchmark defaults (HTTP API) / parameters (--bench mode)
	Bench       bool          `mapstructure:"bench"`
	Workers     int           `mapstructure:"workers"`
	Duration    time.Duration `mapstructure:"duration"`
	ReadPercent int           `mapstructure:"read_percent"`
	Rate        int           `mapstructure:"rate"`

	// Output (--bench mode)
	JSONOutput bool     `mapstructure:"json_output"`
	Dashboard  bool     `mapstructure:"dashboard"`
	Thresholds []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

// TracingConfig mirrors the OTLP exporter settings.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether an exporter endpoint is configured, either
// directly or through the standard OTel environment variable.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// Validate checks everything the rest of the system assumes has been
// checked already. Issues are reported together, not one at a time.
func (c *Config) Validate() error {
	var issues []string

	switch c.Store {
	case StoreRedis, StoreMemory:
	default:
		issues = append(issues, fmt.Sprintf("store: must be 'redis' or 'memory', got %q", c.Store))
	}
	if c.Store == StoreRedis && strings.TrimSpace(c.RedisURL) == "" {
		issues = append(issues, "redis_url: required when store is 'redis'")
	}
	if !c.Bench && strings.TrimSpace(c.Listen) == "" {
		issues = append(issues, "listen: address is required")
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		issues = append(issues, fmt.Sprintf("workers: must be between 1 and %d, got %d", MaxWorkers, c.Workers))
	}
	if c.Duration < time.Second || c.Duration > MaxDuration {
		issues = append(issues, fmt.Sprintf("duration: must be between 1s and %s, got %s", MaxDuration, c.Duration))
	}
	if c.ReadPercent < 0 || c.ReadPercent > MaxReadPercent {
		issues = append(issues, fmt.Sprintf("read_percent: must be between 0 and 100, got %d", c.ReadPercent))
	}
	if c.Rate < 0 {
		issues = append(issues, fmt.Sprintf("rate: must be >= 0, got %d", c.Rate))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing.sample_rate: must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}

	if len(issues) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(issues, "\n  - "))
	}
	return nil
}
