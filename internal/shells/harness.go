package shells

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
)

// defaultDT is one frame at 60 TPS.
const defaultDT = 1.0 / 60.0

// launchOrder is a scheduled trigger request.
type launchOrder struct {
	tick   int
	recipe string
	pos    Vec2
}

// Harness drives a Sim headlessly with a fixed seed, a fixed step and a
// schedule of launches. Tests and cmd/headless-report use it.
type Harness struct {
	Sim      *Sim
	SimLog   *SimLog
	Reporter *SimReporter

	dt             float64
	seed           int64
	verbose        bool
	reportInterval int
	launches       []launchOrder
	trace          *TraceWriter
	catalog        *Catalog
}

// HarnessOption is a builder function applied during NewHarness.
type HarnessOption func(*Harness)

// WithHarnessSeed sets the RNG seed for deterministic runs.
func WithHarnessSeed(seed int64) HarnessOption {
	return func(h *Harness) { h.seed = seed }
}

// WithDT sets the fixed step in seconds.
func WithDT(dt float64) HarnessOption {
	return func(h *Harness) { h.dt = dt }
}

// WithVerbose enables per-tick motion logging.
func WithVerbose(v bool) HarnessOption {
	return func(h *Harness) { h.verbose = v }
}

// WithLaunch schedules recipe to be launched at (x, y) before the given tick
// runs. Tick 0 launches before the first tick.
func WithLaunch(tick int, recipe string, x, y float64) HarnessOption {
	return func(h *Harness) {
		h.launches = append(h.launches, launchOrder{tick: tick, recipe: recipe, pos: Vec2{X: x, Y: y}})
	}
}

// WithReportInterval collects a SimReport every n ticks (0 disables).
func WithReportInterval(n int) HarnessOption {
	return func(h *Harness) { h.reportInterval = n }
}

// WithTrace records every tick as a msgpack frame into w.
func WithTrace(w io.Writer) HarnessOption {
	return func(h *Harness) { h.trace = NewTraceWriter(w) }
}

// WithHarnessCatalog replaces the default recipe catalog.
func WithHarnessCatalog(c *Catalog) HarnessOption {
	return func(h *Harness) { h.catalog = c }
}

// NewHarness builds a Harness from opts. Defaults: seed 1, dt 1/60, report
// every 60 ticks.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		dt:             defaultDT,
		seed:           1,
		reportInterval: 60,
	}
	for _, o := range opts {
		o(h)
	}
	sort.SliceStable(h.launches, func(i, j int) bool { return h.launches[i].tick < h.launches[j].tick })

	h.SimLog = NewSimLog(h.verbose)
	h.Reporter = NewSimReporter(0)
	simOpts := []Option{
		WithRand(rand.New(rand.NewSource(h.seed))), // #nosec G404 -- test harness
		WithLog(h.SimLog),
	}
	if h.catalog != nil {
		simOpts = append(simOpts, WithCatalog(h.catalog))
	}
	h.Sim = NewSim(simOpts...)
	return h
}

// CurrentTick returns the number of ticks run so far.
func (h *Harness) CurrentTick() int {
	return h.Sim.CurrentTick()
}

// RunTicks advances the simulation n ticks, launching scheduled recipes as
// their tick comes up. It stops at the first launch or trace error.
func (h *Harness) RunTicks(n int) error {
	for i := 0; i < n; i++ {
		if err := h.step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntil advances until predicate returns true or maxTicks have run.
// It returns the number of ticks run.
func (h *Harness) RunUntil(predicate func(*Harness) bool, maxTicks int) (int, error) {
	for i := 0; i < maxTicks; i++ {
		if predicate(h) {
			return i, nil
		}
		if err := h.step(); err != nil {
			return i, err
		}
	}
	return maxTicks, nil
}

// TraceFrames returns how many frames the trace has written, 0 without a trace.
func (h *Harness) TraceFrames() int {
	if h.trace == nil {
		return 0
	}
	return h.trace.Frames()
}

// Pending returns how many scheduled launches have not fired yet.
func (h *Harness) Pending() int {
	return len(h.launches)
}

func (h *Harness) step() error {
	next := h.Sim.CurrentTick()
	for len(h.launches) > 0 && h.launches[0].tick <= next {
		l := h.launches[0]
		h.launches = h.launches[1:]
		if _, err := h.Sim.Launch(l.recipe, l.pos); err != nil {
			return fmt.Errorf("launch at tick %d: %w", l.tick, err)
		}
	}

	res := h.Sim.Tick(h.dt)

	if h.trace != nil {
		if err := h.trace.Record(h.Sim, h.dt, res); err != nil {
			return err
		}
	}
	if h.reportInterval > 0 && h.Sim.CurrentTick()%h.reportInterval == 0 {
		h.Reporter.Collect(h.Sim)
	}
	return nil
}
