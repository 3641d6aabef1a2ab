// Package runner drives a scene headlessly at a fixed tick rate and collects
// per-run statistics.
package runner

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene"
)

// DefaultTicks is used when neither the options nor the scene give a length.
const DefaultTicks = 600

// Options configure a run.
type Options struct {
	Ticks    int  // number of ticks, 0 = scene default or DefaultTicks
	TickRate int  // ticks per second used for pacing, default 60
	Realtime bool // pace ticks to wall-clock time instead of running flat out

	// ReportEvery logs a progress line every n ticks, 0 = never.
	ReportEvery int
	Logger      *log.Logger

	// OnTick is called after every tick.
	OnTick func(tick uint64, w *scene.World)
}

// Stats summarizes a run.
type Stats struct {
	SceneID       string
	Ticks         uint64
	Collisions    int // collision events, one per pair per tick
	PeakContacts  int // most collision events in a single tick
	GroundedTicks int // ticks during which the player stood on something
	Elapsed       time.Duration
	Interrupted   bool
	Final         physics.Snapshot
}

// TicksPerSecond is the achieved simulation speed.
func (s Stats) TicksPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Ticks) / s.Elapsed.Seconds()
}

// Run advances w until the tick budget is spent or ctx is cancelled. On
// cancellation the stats gathered so far are returned along with ctx.Err().
func Run(ctx context.Context, w *scene.World, opts Options) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("runner")
	}

	total := opts.Ticks
	if total <= 0 {
		total = w.Scene.Ticks
	}
	if total <= 0 {
		total = DefaultTicks
	}

	stats := Stats{SceneID: w.Scene.ID}
	perTick := 0
	removeHook := w.Sim.OnCollision(func(_, _ *physics.Body) {
		perTick++
	})
	defer removeHook()

	var pace <-chan time.Time
	if opts.Realtime {
		rate := opts.TickRate
		if rate <= 0 {
			rate = 60
		}
		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
		pace = ticker.C
	}

	start := time.Now()
	finish := func() {
		stats.Elapsed = time.Since(start)
		stats.Final = w.Sim.Snapshot()
	}

	logger.Debug("run started", "scene", w.Scene.ID, "ticks", total, "realtime", opts.Realtime)
	for i := 0; i < total; i++ {
		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
				stats.Interrupted = true
				finish()
				return stats, ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			stats.Interrupted = true
			finish()
			return stats, err
		}

		perTick = 0
		w.Sim.Update()
		stats.Ticks++
		stats.Collisions += perTick
		stats.PeakContacts = max(stats.PeakContacts, perTick)
		if w.Player != nil && w.Sim.IsGrounded(w.Player) {
			stats.GroundedTicks++
		}

		if opts.OnTick != nil {
			opts.OnTick(w.Sim.Tick(), w)
		}
		if opts.ReportEvery > 0 && stats.Ticks%uint64(opts.ReportEvery) == 0 {
			logger.Info("progress", "scene", w.Scene.ID, "tick", stats.Ticks, "collisions", stats.Collisions)
		}
	}

	finish()
	logger.Debug("run finished", "scene", w.Scene.ID, "ticks", stats.Ticks, "elapsed", stats.Elapsed)
	return stats, nil
}
