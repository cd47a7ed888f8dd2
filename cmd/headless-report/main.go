package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Fireworks/internal/shells"
)

// showRecipe launches every built-in recipe in turn.
const showRecipe = "show"

type runStats struct {
	runIndex int
	seed     int64

	firstBurstTick int
	lastBurstTick  int
	burnoutTick    int // -1 when the sky never emptied
	traceFrames    int

	stats         shells.Stats
	detachByKind  map[string]int
	windowSummary *shells.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var recipe string
	var dt float64
	var interval int
	var tracePath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 1200, "maximum ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&recipe, "recipe", showRecipe, "recipe name, or \"show\" for one of each")
	flag.Float64Var(&dt, "dt", 1.0/60, "seconds per tick")
	flag.IntVar(&interval, "interval", 60, "ticks between report samples")
	flag.StringVar(&tracePath, "trace", "", "write a msgpack trace of run 1 to this file")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if dt <= 0 {
		fmt.Println("error: -dt must be > 0")
		return
	}
	launches, err := schedule(shells.DefaultCatalog(), recipe)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Fireworks Report ===\n")
	fmt.Printf("recipe=%s runs=%d ticks=%d dt=%.4f seed_base=%d seed_step=%d\n\n", recipe, runs, ticks, dt, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	traceFrames := 0
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		opts := append([]shells.HarnessOption{
			shells.WithHarnessSeed(seed),
			shells.WithDT(dt),
			shells.WithReportInterval(interval),
		}, launches...)

		var traceFile *os.File
		if i == 0 && tracePath != "" {
			traceFile, err = os.Create(tracePath)
			if err != nil {
				fmt.Printf("error: create trace: %v\n", err)
				return
			}
			opts = append(opts, shells.WithTrace(traceFile))
		}

		rs, err := runShow(i+1, seed, ticks, opts...)
		if traceFile != nil {
			if cerr := traceFile.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close trace: %w", cerr)
			}
		}
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, rs)
		traceFrames += rs.traceFrames
		printRun(rs)
	}

	printAggregate(all)
	if tracePath != "" {
		fmt.Printf("\ntrace written to %s (%d frames)\n", tracePath, traceFrames)
	}
}

// schedule turns a recipe flag into launch options. The show spreads one of
// each recipe across the ground line, half a second apart.
func schedule(cat *shells.Catalog, recipe string) ([]shells.HarnessOption, error) {
	if recipe != showRecipe {
		if _, ok := cat.Lookup(recipe); !ok {
			return nil, fmt.Errorf("%w: %q (known: %s, %s)", shells.ErrUnknownRecipe, recipe, strings.Join(cat.Names(), ", "), showRecipe)
		}
		return []shells.HarnessOption{shells.WithLaunch(0, recipe, 0, -300)}, nil
	}
	names := cat.Names()
	opts := make([]shells.HarnessOption, 0, len(names))
	for i, name := range names {
		x := -300 + 600*float64(i)/float64(max(len(names)-1, 1))
		opts = append(opts, shells.WithLaunch(i*30, name, x, -300))
	}
	return opts, nil
}

func runShow(runIndex int, seed int64, ticks int, opts ...shells.HarnessOption) (runStats, error) {
	h := shells.NewHarness(opts...)
	ran, err := h.RunUntil(func(h *shells.Harness) bool {
		return h.Pending() == 0 && h.Sim.Len() == 0
	}, ticks)
	if err != nil {
		return runStats{}, err
	}

	burnout := -1
	if ran < ticks {
		burnout = ran
	}
	entries := h.SimLog.Entries()
	return runStats{
		runIndex:       runIndex,
		seed:           seed,
		firstBurstTick: firstTick(entries, "explode", "burst"),
		lastBurstTick:  lastTick(entries, "explode", "burst"),
		burnoutTick:    burnout,
		traceFrames:    h.TraceFrames(),
		stats:          h.Sim.Stats(),
		detachByKind:   countByValue(h.SimLog.Filter("policy", "detach")),
		windowSummary:  h.Reporter.WindowSummary(),
	}, nil
}

func firstTick(entries []shells.SimLogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

func lastTick(entries []shells.SimLogEntry, category, key string) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Category == category && entries[i].Key == key {
			return entries[i].Tick
		}
	}
	return -1
}

func countByValue(entries []shells.SimLogEntry) map[string]int {
	out := map[string]int{}
	for _, e := range entries {
		out[e.Value]++
	}
	return out
}

func printRun(rs runStats) {
	st := rs.stats
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_burst=%d last_burst=%d burnout=%d\n",
		rs.firstBurstTick, rs.lastBurstTick, rs.burnoutTick)
	fmt.Printf("totals: launched=%d exploded=%d spawned=%d despawned=%d detached=%d peak_active=%d\n",
		st.Launched, st.Exploded, st.Spawned, st.Despawned, st.Detached, st.PeakActive)
	fmt.Printf("detach_by_policy: %s\n", joinCounts(rs.detachByKind))
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	var totalExploded, totalSpawned, totalDetached, peak int
	burstTicks := make([]int, 0, len(all))
	burnoutTicks := make([]int, 0, len(all))
	detached := map[string]int{}
	for _, rs := range all {
		totalExploded += rs.stats.Exploded
		totalSpawned += rs.stats.Spawned
		totalDetached += rs.stats.Detached
		if rs.stats.PeakActive > peak {
			peak = rs.stats.PeakActive
		}
		if rs.firstBurstTick >= 0 {
			burstTicks = append(burstTicks, rs.firstBurstTick)
		}
		if rs.burnoutTick >= 0 {
			burnoutTicks = append(burnoutTicks, rs.burnoutTick)
		}
		for k, v := range rs.detachByKind {
			detached[k] += v
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d burned_out=%d\n", len(all), len(burnoutTicks))
	fmt.Printf("avg_per_run: exploded=%.1f spawned=%.1f detached=%.1f peak_active_max=%d\n",
		avg(totalExploded, len(all)), avg(totalSpawned, len(all)), avg(totalDetached, len(all)), peak)
	fmt.Printf("phase_marker_avg_ticks: first_burst=%s burnout=%s\n",
		avgTickString(burstTicks), avgTickString(burnoutTicks))
	fmt.Printf("detach_by_policy: %s\n", joinCounts(detached))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
