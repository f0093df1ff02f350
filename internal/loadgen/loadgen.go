// Package loadgen drives synthetic read/write traffic against the store and
// reports every operation to the metrics collector.
package loadgen

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/store"
)

// ErrAlreadyRunning is returned by Start while a previous run is active.
var ErrAlreadyRunning = errors.New("benchmark already running")

// defaultSeedBase offsets per-worker RNG seeds. Worker i draws from
// seedBase+i, so runs are reproducible per worker without any shared RNG.
const defaultSeedBase = 1000

// Opts configure one load-generation run. Bounds checking (worker count,
// duration, read percentage) is the caller's job; Start trusts its inputs.
type Opts struct {
	Workers     int           // concurrent workers, each with its own RNG
	Duration    time.Duration // hard deadline for the run
	ReadPercent int           // 0..100, probability of a read per draw
	Rate        int           // optional ops/sec cap shared by all workers (0 = unlimited)
	Seed        int64         // RNG seed base (0 = default)
}

func (o *Opts) normalize() {
	if o.Seed == 0 {
		o.Seed = defaultSeedBase
	}
}

// Controller owns the process-wide "one run at a time" guard and the join
// handle for the active run.
type Controller struct {
	running atomic.Bool

	mu    sync.Mutex
	done  chan struct{} // closed when the active run fully drains
	runID string
}

func NewController() *Controller {
	return &Controller{}
}

// Start begins a run and returns its ID. The running flag is claimed with a
// single compare-and-swap, so two near-simultaneous starts cannot both pass
// the guard. The run ends on its own at the deadline, or earlier via Stop.
func (c *Controller) Start(ctx context.Context, collector *metrics.Collector, st store.Store, opts Opts) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.CompareAndSwap(false, true) {
		return "", ErrAlreadyRunning
	}
	opts.normalize()

	done := make(chan struct{})
	c.done = done
	c.runID = ulid.Make().String()

	go func() {
		defer close(done)
		c.run(ctx, collector, st, opts)
	}()
	return c.runID, nil
}

// Stop flips the shared flag false and joins all workers before returning.
// It reports false when no run was active. Once Stop returns, no further
// Record call from this controller's workers can arrive. Idempotent.
// The join happens outside the control mutex, which no worker ever takes.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	wasRunning := c.running.Load()
	c.running.Store(false)
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	return wasRunning
}

// Wait blocks until the active run drains on its own. No-op when idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether a run is active.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// RunID returns the ID of the most recent run, or "" before the first one.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

func (c *Controller) run(ctx context.Context, collector *metrics.Collector, st store.Store, opts Opts) {
	// The flag must read false once no worker is active, even if workers
	// bail out early.
	defer c.running.Store(false)

	deadline := time.Now().Add(opts.Duration)

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		// Burst equal to the rate to smooth pacing across workers.
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), opts.Rate)
	}

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		w := &worker{
			rng:       rand.New(rand.NewSource(opts.Seed + int64(i))),
			store:     st,
			collector: collector,
		}
		go func() {
			defer wg.Done()
			w.loop(ctx, c, deadline, limiter, opts.ReadPercent)
		}()
	}
	wg.Wait()
}

// loop is the worker body. Cancellation is cooperative: the flag and the
// deadline are checked once per iteration, and an operation already in
// flight is never interrupted.
func (w *worker) loop(ctx context.Context, c *Controller, deadline time.Time, limiter *rate.Limiter, readPercent int) {
	for c.running.Load() && time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}
		// Fresh uniform draw per iteration: the realized mix converges to
		// readPercent statistically, not as a fixed rotation.
		if w.rng.Intn(100) < readPercent {
			w.doRead(ctx)
		} else {
			w.doWrite(ctx)
		}
	}
}
