package host

import (
	"fmt"
	"sort"

	"github.com/Garsondee/Fireworks/internal/shells"
)

const eventLogMaxEntries = 60

// EventEntry is a single line in the on-screen event feed.
type EventEntry struct {
	Tick    int
	Tag     shells.RenderTag
	Message string
}

// EventLog is a ring buffer of recent launches and bursts.
type EventLog struct {
	entries []EventEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{
		entries: make([]EventEntry, eventLogMaxEntries),
	}
}

// Add appends an entry to the log.
func (el *EventLog) Add(tick int, tag shells.RenderTag, msg string) {
	el.entries[el.head] = EventEntry{
		Tick:    tick,
		Tag:     tag,
		Message: msg,
	}
	el.head = (el.head + 1) % eventLogMaxEntries
	if el.count < eventLogMaxEntries {
		el.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []EventEntry {
	result := make([]EventEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + eventLogMaxEntries) % eventLogMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

func (el *EventLog) Len() int {
	return el.count
}

// RecordTick summarises a tick's spawns as one line per tag.
func (el *EventLog) RecordTick(tick int, res shells.TickResult) {
	if len(res.Spawned) == 0 {
		return
	}
	byTag := map[shells.RenderTag]int{}
	for _, st := range res.Spawned {
		byTag[st.Tag]++
	}
	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)
	for _, tag := range tags {
		n := byTag[shells.RenderTag(tag)]
		el.Add(tick, shells.RenderTag(tag), fmt.Sprintf("burst %d %s", n, tag))
	}
}
