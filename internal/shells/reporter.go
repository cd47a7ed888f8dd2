package shells

import (
	"fmt"
	"sort"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-population reports (~10s at 60TPS).
const reportWindowTicks = 600

// SimReport is a snapshot of the population at one tick.
type SimReport struct {
	Tick      int
	Active    int
	ByTag     map[RenderTag]int
	Burning   int     // projectiles still carrying a policy
	AvgSpeed  float64 // mean |velocity| over the population
	MaxHeight float64 // highest y in the population
	Stats     Stats
}

// SimReporter collects periodic reports from a Sim and summarises sliding windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current simulation state.
func (r *SimReporter) Collect(s *Sim) {
	report := SimReport{
		Tick:  s.CurrentTick(),
		ByTag: make(map[RenderTag]int),
		Stats: s.Stats(),
	}
	first := true
	var speedSum float64
	for _, e := range s.entries {
		report.Active++
		report.ByTag[e.proj.Tag]++
		if e.proj.Policy != nil {
			report.Burning++
		}
		speedSum += e.proj.Velocity.Len()
		if first || e.position.Y > report.MaxHeight {
			report.MaxHeight = e.position.Y
			first = false
		}
	}
	if report.Active > 0 {
		report.AvgSpeed = speedSum / float64(report.Active)
	}
	r.history = append(r.history, report)
}

// Latest returns the most recent report, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowReport averages the reports inside the reporter's window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	AvgActive   float64
	PeakActive  int
	AvgBurning  float64
	AvgSpeed    float64
	MaxHeight   float64
	TagShare    map[RenderTag]float64 // percent of sampled projectiles per tag
	Explosions  int                   // bursts inside the window
	Expirations int                   // despawns inside the window
}

// WindowSummary summarises the reports within windowTicks of the latest one.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	oldest := window[len(window)-1]
	newest := window[0]
	wr := &WindowReport{
		FromTick:    oldest.Tick,
		ToTick:      newest.Tick,
		SampleCount: len(window),
		TagShare:    make(map[RenderTag]float64),
		Explosions:  newest.Stats.Exploded - oldest.Stats.Exploded,
		Expirations: newest.Stats.Despawned - oldest.Stats.Despawned,
	}

	n := float64(len(window))
	var total float64
	seen := false
	for _, rpt := range window {
		wr.AvgActive += float64(rpt.Active)
		wr.AvgBurning += float64(rpt.Burning)
		wr.AvgSpeed += rpt.AvgSpeed
		if rpt.Active > wr.PeakActive {
			wr.PeakActive = rpt.Active
		}
		if rpt.Active > 0 && (!seen || rpt.MaxHeight > wr.MaxHeight) {
			wr.MaxHeight = rpt.MaxHeight
			seen = true
		}
		for tag, c := range rpt.ByTag {
			wr.TagShare[tag] += float64(c)
			total += float64(c)
		}
	}
	wr.AvgActive /= n
	wr.AvgBurning /= n
	wr.AvgSpeed /= n
	if total > 0 {
		for tag := range wr.TagShare {
			wr.TagShare[tag] = wr.TagShare[tag] / total * 100
		}
	}
	return wr
}

// Format renders the window report as a few aligned lines.
func (wr *WindowReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Window T=%d..%d (%d samples) ===\n", wr.FromTick, wr.ToTick, wr.SampleCount)
	fmt.Fprintf(&sb, "active: avg=%.1f peak=%d burning=%.1f\n", wr.AvgActive, wr.PeakActive, wr.AvgBurning)
	fmt.Fprintf(&sb, "motion: avg_speed=%.1f max_height=%.0f\n", wr.AvgSpeed, wr.MaxHeight)
	fmt.Fprintf(&sb, "events: explosions=%d expirations=%d\n", wr.Explosions, wr.Expirations)

	tags := make([]string, 0, len(wr.TagShare))
	for tag := range wr.TagShare {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)
	sb.WriteString("tags:")
	if len(tags) == 0 {
		sb.WriteString(" none")
	}
	for _, tag := range tags {
		fmt.Fprintf(&sb, " %s=%.0f%%", tag, wr.TagShare[RenderTag(tag)])
	}
	sb.WriteByte('\n')
	return sb.String()
}
