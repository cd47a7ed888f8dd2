package host

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Fireworks/internal/shells"
)

// DebugReport renders a plain-text snapshot of the running show, suitable for
// pasting into a bug report. lastTicks bounds the sim log excerpt.
func DebugReport(cfg Config, sim *shells.Sim, store *Store, feed *EventLog, lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := sim.CurrentTick()
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	st := sim.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "--- Fireworks debug report ---\n")
	fmt.Fprintf(&b, "seed=%d recipe=%s tick=%d speed=%.2fx\n", cfg.Seed, cfg.Recipe, toTick, cfg.Speed)
	fmt.Fprintf(&b, "active=%d stored=%d peak=%d launched=%d exploded=%d spawned=%d despawned=%d detached=%d\n\n",
		st.Active, store.Len(), st.PeakActive, st.Launched, st.Exploded, st.Spawned, st.Despawned, st.Detached)

	if feed != nil && feed.Len() > 0 {
		b.WriteString("== recent events ==\n")
		for _, e := range feed.Recent() {
			fmt.Fprintf(&b, "[T=%05d] %s\n", e.Tick, e.Message)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "== sim log [%d..%d] ==\n", fromTick, toTick)
	excerpt := sim.Log().FormatRange(fromTick, toTick)
	if excerpt == "" {
		b.WriteString("(no entries)\n")
	} else {
		b.WriteString(excerpt)
	}
	return b.String()
}
