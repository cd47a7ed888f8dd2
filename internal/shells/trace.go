package shells

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame is one recorded tick: the instructions it produced and the population
// after it.
type Frame struct {
	Tick      int        `msgpack:"tick"`
	DT        float64    `msgpack:"dt"`
	Despawned []EntityID `msgpack:"despawned,omitempty"`
	Spawned   []State    `msgpack:"spawned,omitempty"`
	States    []State    `msgpack:"states"`
}

// TraceWriter streams frames to w as consecutive msgpack values.
type TraceWriter struct {
	enc    *msgpack.Encoder
	frames int
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{enc: msgpack.NewEncoder(w)}
}

// Record captures the Sim's population after a tick that produced res.
func (tw *TraceWriter) Record(s *Sim, dt float64, res TickResult) error {
	return tw.Write(Frame{
		Tick:      s.CurrentTick(),
		DT:        dt,
		Despawned: res.Despawned,
		Spawned:   res.Spawned,
		States:    s.ActiveStates(),
	})
}

func (tw *TraceWriter) Write(f Frame) error {
	if err := tw.enc.Encode(&f); err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Tick, err)
	}
	tw.frames++
	return nil
}

// Frames returns how many frames have been written.
func (tw *TraceWriter) Frames() int {
	return tw.frames
}

// ReadTrace decodes every frame in r until EOF.
func ReadTrace(r io.Reader) ([]Frame, error) {
	dec := msgpack.NewDecoder(r)
	var frames []Frame
	for {
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}
