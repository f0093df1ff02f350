package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redlens/redlens/internal/config"
	"github.com/redlens/redlens/internal/dashboard"
	"github.com/redlens/redlens/internal/loadgen"
	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/output"
	"github.com/redlens/redlens/internal/seed"
	"github.com/redlens/redlens/internal/server"
	"github.com/redlens/redlens/internal/store"
	"github.com/redlens/redlens/internal/threshold"
	"github.com/redlens/redlens/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		_ = tp.Shutdown(shutdownCtx)
	}()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if !cfg.SkipSeed {
		profile := seed.DefaultProfile()
		if cfg.SeedProfile != "" {
			profile, err = seed.LoadProfile(cfg.SeedProfile)
			if err != nil {
				return err
			}
		}
		fmt.Printf("Seeding %d users / %d products...\n", profile.Users, profile.Products)
		if err := seed.Run(ctx, st, profile); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	collector := metrics.NewCollector()
	bench := loadgen.NewController()

	if cfg.Bench {
		return runBench(ctx, cancel, cfg, st, collector, bench)
	}
	return runServer(ctx, cfg, st, collector, bench, tp)
}

func runServer(ctx context.Context, cfg *config.Config, st store.Store, collector *metrics.Collector, bench *loadgen.Controller, tp *tracing.Provider) error {
	if cfg.LockFile != "" {
		lock, err := server.AcquireLock(cfg.LockFile)
		if err != nil {
			return err
		}
		defer lock.Unlock()
	}

	srv := server.New(st, collector, bench, tp, cfg.StaticDir)
	httpSrv := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Router(),
	}

	fmt.Printf("Listening on %s\n", cfg.Listen)
	fmt.Printf("  Metrics JSON  http://localhost%s/api/metrics\n", cfg.Listen)
	fmt.Printf("  Metrics SSE   http://localhost%s/api/metrics/stream\n", cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// A benchmark started over the API must drain before the store closes.
	bench.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runBench(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, st store.Store, collector *metrics.Collector, bench *loadgen.Controller) error {
	thresholds, err := threshold.ParseAll(cfg.Thresholds)
	if err != nil {
		return err
	}

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.RunConfig{
			Store:       string(cfg.Store),
			RedisURL:    cfg.RedisURL,
			Workers:     cfg.Workers,
			Duration:    cfg.Duration,
			ReadPercent: cfg.ReadPercent,
			Rate:        cfg.Rate,
			ConfigFile:  cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
	}

	if _, err := bench.Start(ctx, collector, st, loadgen.Opts{
		Workers:     cfg.Workers,
		Duration:    cfg.Duration,
		ReadPercent: cfg.ReadPercent,
		Rate:        cfg.Rate,
	}); err != nil {
		return err
	}

	if dash != nil {
		dash.Start()
	}
	if progress != nil {
		progress.Start()
	}

	bench.Wait()

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if dash != nil {
		dash.Stop()
	}

	snap := collector.Snapshot()
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, snap); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, snap)
	}

	if len(thresholds) > 0 {
		results := threshold.NewEvaluator(thresholds).Evaluate(snap)
		failed := 0
		for _, r := range results {
			mark := "PASS"
			if !r.Pass {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("  [%s] %s (actual %.2f)\n", mark, r.Threshold.Raw, r.Actual)
			if r.Message != "" {
				fmt.Printf("         %s\n", r.Message)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.OpenRedis(ctx, cfg.RedisURL)
	}
}
