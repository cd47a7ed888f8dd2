package shells

import (
	"fmt"
	"math/rand"
	"time"
)

// EntityID identifies a live projectile. IDs are assigned in increasing order
// and never reused within a Sim.
type EntityID uint64

func (id EntityID) String() string {
	return fmt.Sprintf("#%d", id)
}

// State is the externally visible state of one live projectile.
type State struct {
	ID       EntityID  `msgpack:"id"`
	Position Vec2      `msgpack:"pos"`
	Velocity Vec2      `msgpack:"vel"`
	Tag      RenderTag `msgpack:"tag"`
}

// TickResult lists the instructions a host applies after a tick.
type TickResult struct {
	Despawned []EntityID
	Spawned   []State
}

// Stats are running totals for a Sim.
type Stats struct {
	Tick       int
	Active     int
	PeakActive int
	Launched   int // roots admitted via Spawn/Launch
	Exploded   int // expirations that released children
	Spawned    int // children admitted by explosions
	Despawned  int // all expirations
	Detached   int // policies dropped after their burn
}

// entry is one member of the active population.
type entry struct {
	id       EntityID
	position Vec2
	proj     Projectile
	children []Shell
}

// Sim owns the active population and advances it one tick at a time.
// It is single-threaded: Spawn, Launch and Tick must not run concurrently.
type Sim struct {
	rng     *rand.Rand
	catalog *Catalog
	log     *SimLog

	entries []*entry // ordered by id
	nextID  EntityID
	stats   Stats
}

// Option configures a Sim.
type Option func(*Sim)

// WithSeed seeds the Sim's random source.
func WithSeed(seed int64) Option {
	return func(s *Sim) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- visual effect
	}
}

// WithRand sets the Sim's random source. The Sim becomes its only user.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sim) {
		s.rng = rng
	}
}

// WithCatalog replaces the default recipe catalog used by Launch.
func WithCatalog(c *Catalog) Option {
	return func(s *Sim) {
		s.catalog = c
	}
}

// WithLog records simulation events into l.
func WithLog(l *SimLog) Option {
	return func(s *Sim) {
		s.log = l
	}
}

// NewSim creates an empty simulation. Without WithSeed/WithRand it seeds from
// the clock.
func NewSim(opts ...Option) *Sim {
	s := &Sim{nextID: 1}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- visual effect
	}
	if s.catalog == nil {
		s.catalog = DefaultCatalog()
	}
	if s.log == nil {
		s.log = NewSimLog(false)
	}
	return s
}

func (s *Sim) Catalog() *Catalog { return s.catalog }
func (s *Sim) Log() *SimLog      { return s.log }
func (s *Sim) CurrentTick() int  { return s.stats.Tick }
func (s *Sim) Len() int          { return len(s.entries) }

// Stats returns a copy of the running totals.
func (s *Sim) Stats() Stats {
	st := s.stats
	st.Active = len(s.entries)
	return st
}

// Spawn admits root as a live projectile at position. Its children are held
// until it explodes. The template is not modified.
func (s *Sim) Spawn(root Shell, position Vec2) State {
	e := s.admit(root, position)
	s.stats.Launched++
	s.log.Add(s.stats.Tick, e.id.String(), "launch", "root",
		fmt.Sprintf("%s at (%.0f,%.0f) payload=%d", e.proj.Tag, position.X, position.Y, root.Size()-1),
		float64(len(root.Children)))
	return e.state()
}

// Launch builds the named recipe from the Sim's random source and spawns it.
func (s *Sim) Launch(recipe string, position Vec2) (State, error) {
	root, err := s.catalog.Build(recipe, s.rng)
	if err != nil {
		return State{}, err
	}
	return s.Spawn(root, position), nil
}

func (s *Sim) admit(sh Shell, position Vec2) *entry {
	e := &entry{
		id:       s.nextID,
		position: position,
		proj:     sh.Projectile.clone(),
		children: sh.Children,
	}
	s.nextID++
	s.entries = append(s.entries, e)
	if n := len(s.entries); n > s.stats.PeakActive {
		s.stats.PeakActive = n
	}
	return e
}

// Tick advances every live projectile by dt seconds, removes the ones whose
// lifetime ran out and admits their children at the parent's final position.
// Children admitted here are first integrated on the next call.
// Negative or non-finite dt counts as zero.
func (s *Sim) Tick(dt float64) TickResult {
	dt = sanitizeDT(dt)
	s.stats.Tick++
	tick := s.stats.Tick

	var res TickResult
	var expired []*entry
	live := s.entries[:0]
	for _, e := range s.entries {
		if dt > 0 && !e.proj.Expired() {
			var kind PolicyKind
			if e.proj.Policy != nil {
				kind = e.proj.Policy.Kind
			}
			if e.proj.Step(dt, s.rng) {
				s.stats.Detached++
				s.log.Add(tick, e.id.String(), "policy", "detach", kind.String(), 0)
			}
			e.position = e.position.Add(e.proj.Velocity.Scale(dt))
			s.log.AddVerbose(tick, e.id.String(), "motion", "step",
				fmt.Sprintf("pos=(%.1f,%.1f)", e.position.X, e.position.Y), e.proj.Velocity.Len())
		}
		if e.proj.Expired() {
			expired = append(expired, e)
			continue
		}
		live = append(live, e)
	}
	for i := len(live); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = live

	for _, e := range expired {
		res.Despawned = append(res.Despawned, e.id)
		s.stats.Despawned++
		if len(e.children) == 0 {
			s.log.Add(tick, e.id.String(), "explode", "leaf", string(e.proj.Tag), 0)
			continue
		}
		s.stats.Exploded++
		s.log.Add(tick, e.id.String(), "explode", "burst",
			fmt.Sprintf("%d stars (%s)", len(e.children), e.children[0].Projectile.Tag),
			float64(len(e.children)))
		for _, c := range e.children {
			child := s.admit(c, e.position)
			s.stats.Spawned++
			res.Spawned = append(res.Spawned, child.state())
			s.log.AddVerbose(tick, child.id.String(), "spawn", "child", "parent="+e.id.String(), 0)
		}
	}
	return res
}

// ActiveStates returns a snapshot of every live projectile, ordered by ID.
func (s *Sim) ActiveStates() []State {
	out := make([]State, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.state()
	}
	return out
}

// Lookup returns the live state for id.
func (s *Sim) Lookup(id EntityID) (State, bool) {
	for _, e := range s.entries {
		if e.id == id {
			return e.state(), true
		}
	}
	return State{}, false
}

func (e *entry) state() State {
	return State{ID: e.id, Position: e.position, Velocity: e.proj.Velocity, Tag: e.proj.Tag}
}
