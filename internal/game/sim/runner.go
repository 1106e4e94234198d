package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/observability"
)

// Driver supplies the player position and heading each tick.
type Driver interface {
	Advance(dt float64) (pos, heading geom.Vec2)
}

// Runner advances a World on a fixed-step ticker.
//
// Invariant: every Tick receives exactly the configured step as dt,
// regardless of wall-clock jitter.
type Runner struct {
	world    *World
	driver   Driver
	tick     time.Duration
	duration time.Duration
	logger   *zap.Logger
	counters *observability.Counters

	statsEvery uint64
	steps      atomic.Uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewRunner creates a Runner. duration bounds the simulated time; 0 runs
// until the context is cancelled.
//
// Precondition: w and driver must be non-nil; tick > 0.
func NewRunner(w *World, driver Driver, tick, duration time.Duration, logger *zap.Logger) *Runner {
	if tick <= 0 {
		panic("sim.NewRunner: tick must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	every := uint64(time.Second / tick)
	if every == 0 {
		every = 1
	}
	return &Runner{
		world:      w,
		driver:     driver,
		tick:       tick,
		duration:   duration,
		logger:     logger,
		counters:   observability.NewCounters(),
		statsEvery: every,
	}
}

// Steps returns the number of completed steps.
func (r *Runner) Steps() uint64 { return r.steps.Load() }

// Step advances the driver and the world by one tick.
func (r *Runner) Step() TickReport {
	dt := r.tick.Seconds()
	pos, heading := r.driver.Advance(dt)
	rep := r.world.Tick(dt, pos, heading)
	steps := r.steps.Add(1)

	r.counters.Add("materialized", int64(rep.Materialized))
	r.counters.Add("moved", int64(rep.Moved))
	r.counters.Add("corrections", int64(rep.Corrections))
	r.counters.Add("despawned", int64(rep.Despawned))
	r.counters.Add("removed", int64(rep.Removed))
	if rep.EnemySpawned != nil {
		r.counters.Add("enemies_spawned", 1)
	}
	if rep.PickupSpawned != nil {
		r.counters.Add("pickups_spawned", 1)
	}
	if steps%r.statsEvery == 0 {
		r.counters.Flush(r.logger, "simulation stats",
			zap.Uint64("tick", rep.Tick),
			zap.Int("live", r.world.Registry().Len()),
		)
	}
	return rep
}

// done reports whether the simulated duration has elapsed.
func (r *Runner) done() bool {
	return r.duration > 0 && time.Duration(r.steps.Load())*r.tick >= r.duration
}

// Run steps the world once per tick until ctx is cancelled or the
// simulated duration elapses.
//
// Postcondition: Returns nil on a bounded finish, or ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	r.logger.Info("simulation started",
		zap.Duration("tick", r.tick),
		zap.Duration("duration", r.duration),
	)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	var err error
loop:
	for !r.done() {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case <-ticker.C:
			r.Step()
		}
	}

	steps := r.steps.Load()
	r.counters.Flush(r.logger, "simulation stats", zap.Uint64("tick", steps))
	r.logger.Info("simulation stopped",
		zap.Uint64("steps", steps),
		zap.Duration("simulated", time.Duration(steps)*r.tick),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Start runs the simulation until Stop is called or the duration elapses.
// Together with Stop it makes Runner a lifecycle service.
func (r *Runner) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		cancel()
		return nil
	}
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop cancels a running Start. A Start that begins after Stop returns
// immediately.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.cancel != nil {
		r.cancel()
	}
}
