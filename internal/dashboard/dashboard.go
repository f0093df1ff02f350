// Package dashboard renders a live terminal UI for benchmark runs.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/redlens/redlens/internal/metrics"
)

// RunConfig holds the benchmark parameters shown in the summary panel.
type RunConfig struct {
	Store       string        // backing store ("redis" or "memory")
	RedisURL    string        // connection target when the store is redis
	Workers     int           // concurrent workers
	Duration    time.Duration // run length
	ReadPercent int           // 0..100
	Rate        int           // ops/sec cap (0 = unlimited)
	ConfigFile  string        // path to config file if used
}

// Dashboard polls the collector twice a second and redraws the grid.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	distList       *widgets.List
	recentList     *widgets.List
	summaryPara    *widgets.Paragraph
	countersPara   *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	runConfig      RunConfig
}

// New initializes termui and builds the widget grid.
func New(collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "E2E p50 (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency by Layer"
	d.latencyPara.Text = "Awaiting data"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.distList = widgets.NewList()
	d.distList.Title = "E2E Distribution"
	d.distList.Rows = []string{"Awaiting data"}
	d.distList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.distList.BorderStyle.Fg = ui.ColorCyan

	d.recentList = widgets.NewList()
	d.recentList.Title = "Recent Operations"
	d.recentList.Rows = []string{"Awaiting data"}
	d.recentList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.recentList.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.countersPara = widgets.NewParagraph()
	d.countersPara.Title = "Counters"
	d.countersPara.Text = "Waiting for data..."
	d.countersPara.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.countersPara),
		),
		ui.NewRow(0.30,
			ui.NewCol(0.60, d.latencySparkle),
			ui.NewCol(0.40, d.latencyPara),
		),
		ui.NewRow(0.38,
			ui.NewCol(0.5, d.recentList),
			ui.NewCol(0.5, d.distList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Wait for Stop() to cancel the context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := d.collector.Snapshot()

	if snap.E2E.HasData() {
		p50Ms := usToMs(snap.E2E.P50)
		d.latencyHistory = append(d.latencyHistory, p50Ms)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | p50: %.2fms | Min: %.2fms | Max: %.2fms",
			p50Ms, usToMs(snap.E2E.Min), usToMs(snap.E2E.Max),
		)
	}

	d.rpsGauge.Percent = rpsPercent(snap.RequestsPerSec)
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", snap.RequestsPerSec)

	d.summaryPara.Text = fmt.Sprintf(
		"%s\nElapsed: %s | Total: %d | Success Rate: %.1f%%",
		formatRunParams(d.runConfig),
		time.Since(d.startTime).Round(time.Second),
		snap.TotalRequests,
		successRate(snap),
	)

	d.countersPara.Text = fmt.Sprintf(
		"Total Requests:  %d\nReads:           %d\nWrites:          %d\nErrors:          %d\nCurrent RPS:     %.2f",
		snap.TotalRequests, snap.TotalReads, snap.TotalWrites, snap.TotalErrors, snap.RequestsPerSec,
	)

	d.latencyPara.Text = formatLayerStats(snap)
	d.distList.Rows = distributionRows(snap.Distribution)
	d.recentList.Rows = recentSampleRows(snap.RecentSamples, 12)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func usToMs(us int64) float64 {
	return float64(us) / 1000.0
}

func successRate(snap metrics.Snapshot) float64 {
	if snap.TotalRequests == 0 {
		return 0
	}
	ok := snap.TotalRequests - snap.TotalErrors
	return float64(ok) / float64(snap.TotalRequests) * 100
}

// rpsPercent maps throughput onto a 0..100 gauge. The scale grows with the
// observed rate so the bar never pins at full.
func rpsPercent(rps float64) int {
	maxRPS := 100.0
	if rps > maxRPS {
		maxRPS = rps
	}
	pct := int(rps / maxRPS * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func formatLayerStats(snap metrics.Snapshot) string {
	layers := []struct {
		name string
		set  metrics.PercentileSet
	}{
		{"E2E    ", snap.E2E},
		{"Redis R", snap.RedisRead},
		{"Redis W", snap.RedisWrite},
		{"App    ", snap.AppOverhead},
	}
	lines := make([]string, 0, len(layers))
	for _, l := range layers {
		if !l.set.HasData() {
			lines = append(lines, fmt.Sprintf("%s  no data", l.name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  p50 %6.2fms  p95 %6.2fms  p99 %6.2fms",
			l.name, usToMs(l.set.P50), usToMs(l.set.P95), usToMs(l.set.P99)))
	}
	return strings.Join(lines, "\n")
}

func distributionRows(buckets []metrics.DistBucket) []string {
	if len(buckets) == 0 {
		return []string{"[No samples yet](fg:green)"}
	}
	var total int64
	for _, b := range buckets {
		total += b.Count
	}
	rows := make([]string, 0, len(buckets))
	for _, b := range buckets {
		share := 0.0
		if total > 0 {
			share = float64(b.Count) / float64(total) * 100
		}
		rows = append(rows, fmt.Sprintf("[%6d-%-6dus](fg:cyan) %6d  %5.1f%%", b.RangeStartUS, b.RangeEndUS, b.Count, share))
	}
	return rows
}

func recentSampleRows(samples []metrics.SampleRecord, limit int) []string {
	if len(samples) == 0 {
		return []string{"[No operations yet](fg:green)"}
	}
	// Newest last in the feed; show the tail, newest first.
	start := len(samples) - limit
	if start < 0 {
		start = 0
	}
	tail := samples[start:]
	rows := make([]string, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		s := tail[i]
		status := "[ok](fg:green)"
		if !s.Success {
			status = "[err](fg:red)"
		}
		kind := "W"
		if s.IsRead {
			kind = "R"
		}
		rows = append(rows, fmt.Sprintf("%s %s %-28s %7dus", status, kind, s.Endpoint, s.TotalUS))
	}
	return rows
}

func formatRunParams(cfg RunConfig) string {
	var parts []string

	if cfg.Store != "" {
		target := cfg.Store
		if cfg.Store == "redis" && cfg.RedisURL != "" {
			target = cfg.RedisURL
		}
		parts = append(parts, fmt.Sprintf("Store: %s", target))
	}
	if cfg.Workers > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", cfg.Workers))
	}
	if cfg.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", cfg.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}
	if cfg.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", cfg.Duration))
	}
	parts = append(parts, fmt.Sprintf("Reads: %d%%", cfg.ReadPercent))
	if cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", cfg.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
