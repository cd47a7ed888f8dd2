package shells

// Timer is a one-shot countdown measured in seconds.
// A timer with zero duration is finished as soon as it exists.
type Timer struct {
	Duration float64
	Elapsed  float64
}

// NewTimer returns a fresh timer. Negative or non-finite durations become zero.
func NewTimer(seconds float64) Timer {
	return Timer{Duration: sanitizeDT(seconds)}
}

// Tick advances the timer. Once finished it stays finished and stops counting.
func (t *Timer) Tick(dt float64) {
	if t.Finished() {
		return
	}
	t.Elapsed += sanitizeDT(dt)
}

func (t Timer) Finished() bool {
	return t.Elapsed >= t.Duration
}

// Remaining returns the seconds left before the timer finishes, never negative.
func (t Timer) Remaining() float64 {
	if t.Finished() {
		return 0
	}
	return t.Duration - t.Elapsed
}

// Reset rewinds the timer to zero elapsed time, keeping its duration.
func (t *Timer) Reset() {
	t.Elapsed = 0
}
