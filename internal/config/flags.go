package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "redlens",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Server flags
	flags.String("listen", DefaultListen, "HTTP listen address")
	flags.String("redis-url", DefaultRedisURL, "Redis connection URL")
	flags.String("store", string(StoreRedis), "Backing store: 'redis' or 'memory'")
	flags.String("static-dir", DefaultStaticDir, "Directory with the dashboard assets")
	flags.String("lock-file", "", "Lock file guarding against a second instance (empty disables)")

	// Seeding flags
	flags.Bool("skip-seed", false, "Skip seeding mock data on startup")
	flags.String("seed-profile", "", "YAML file overriding seed counts")

	// Benchmark flags
	flags.Bool("bench", false, "Run a one-shot CLI benchmark instead of serving")
	flags.IntP("workers", "c", DefaultWorkers, "Number of concurrent load workers")
	flags.DurationP("duration", "d", DefaultDuration, "How long the benchmark runs (e.g. 30s, 2m)")
	flags.Int("read-percent", DefaultReadPct, "Percentage of operations that are reads (0-100)")
	flags.IntP("rate", "r", 0, "Operations per second limit (0 means unlimited)")

	// Output flags
	flags.Bool("json-output", false, "Emit the final report as JSON (--bench mode)")
	flags.Bool("dashboard", false, "Show live terminal dashboard (--bench mode)")
	flags.StringSlice("threshold", nil, "Performance threshold (repeatable, e.g. 'e2e.p99 < 500')")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP exporter endpoint")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("tracing-service-name", "", "Service name reported in traces")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio (0.0-1.0)")
	flags.Bool("tracing-insecure", false, "Skip TLS for the OTLP exporter")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	stringFlag := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	intFlag := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}
	boolFlag := func(name string, dst *bool) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetBool(name)
		}
	}
	durationFlag := func(name string, dst *time.Duration) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetDuration(name)
		}
	}

	stringFlag("listen", &cfg.Listen)
	stringFlag("redis-url", &cfg.RedisURL)
	if fs.Changed("store") {
		val, getErr := fs.GetString("store")
		if getErr != nil {
			return getErr
		}
		cfg.Store = StoreKind(val)
	}
	stringFlag("static-dir", &cfg.StaticDir)
	stringFlag("lock-file", &cfg.LockFile)

	boolFlag("skip-seed", &cfg.SkipSeed)
	stringFlag("seed-profile", &cfg.SeedProfile)

	boolFlag("bench", &cfg.Bench)
	intFlag("workers", &cfg.Workers)
	durationFlag("duration", &cfg.Duration)
	intFlag("read-percent", &cfg.ReadPercent)
	intFlag("rate", &cfg.Rate)

	boolFlag("json-output", &cfg.JSONOutput)
	boolFlag("dashboard", &cfg.Dashboard)
	if err == nil && fs.Changed("threshold") {
		cfg.Thresholds, err = fs.GetStringSlice("threshold")
	}

	stringFlag("tracing-endpoint", &cfg.Tracing.Endpoint)
	stringFlag("tracing-protocol", &cfg.Tracing.Protocol)
	stringFlag("tracing-service-name", &cfg.Tracing.ServiceName)
	if err == nil && fs.Changed("tracing-sample-rate") {
		cfg.Tracing.SampleRate, err = fs.GetFloat64("tracing-sample-rate")
	}
	boolFlag("tracing-insecure", &cfg.Tracing.Insecure)

	return err
}
