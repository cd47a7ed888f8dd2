package host

import (
	"github.com/Garsondee/Fireworks/internal/shells"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// trailCap is the number of past positions kept per body.
const trailCap = 8

// BodyData mirrors one live projectile in host storage.
type BodyData struct {
	ID       shells.EntityID
	Position shells.Vec2
	Velocity shells.Vec2
	Tag      shells.RenderTag
	Age      int // ticks since admission
}

// TrailData is a short ring of recent positions, oldest first via Points.
type TrailData struct {
	points [trailCap]shells.Vec2
	head   int
	n      int
}

// Push records p as the newest point.
func (t *TrailData) Push(p shells.Vec2) {
	t.points[t.head] = p
	t.head = (t.head + 1) % trailCap
	if t.n < trailCap {
		t.n++
	}
}

// Points returns the recorded positions in chronological order.
func (t *TrailData) Points() []shells.Vec2 {
	out := make([]shells.Vec2, t.n)
	for i := 0; i < t.n; i++ {
		out[i] = t.points[(t.head-t.n+i+trailCap)%trailCap]
	}
	return out
}

var (
	Body  = donburi.NewComponentType[BodyData]()
	Trail = donburi.NewComponentType[TrailData]()
)

// Store is the host's entity storage. It applies the spawn and despawn
// instructions a Sim emits and keeps render-side state the core does not own.
type Store struct {
	world  donburi.World
	byID   map[shells.EntityID]donburi.Entity
	bodies *donburi.Query
	trails bool
}

// NewStore creates an empty store. With trails on, each body also carries a
// Trail component.
func NewStore(trails bool) *Store {
	return &Store{
		world:  donburi.NewWorld(),
		byID:   make(map[shells.EntityID]donburi.Entity),
		bodies: donburi.NewQuery(filter.Contains(Body)),
		trails: trails,
	}
}

// Admit creates a body for st. Admitting an ID twice is a no-op.
func (s *Store) Admit(st shells.State) {
	if _, ok := s.byID[st.ID]; ok {
		return
	}
	var e donburi.Entity
	if s.trails {
		e = s.world.Create(Body, Trail)
	} else {
		e = s.world.Create(Body)
	}
	entry := s.world.Entry(e)
	Body.SetValue(entry, BodyData{
		ID:       st.ID,
		Position: st.Position,
		Velocity: st.Velocity,
		Tag:      st.Tag,
	})
	if s.trails {
		Trail.Get(entry).Push(st.Position)
	}
	s.byID[st.ID] = e
}

// Remove deletes the body for id, reporting whether it existed.
func (s *Store) Remove(id shells.EntityID) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if s.world.Valid(e) {
		s.world.Remove(e)
	}
	return true
}

// Apply removes despawned bodies, then admits spawned ones.
func (s *Store) Apply(res shells.TickResult) {
	for _, id := range res.Despawned {
		s.Remove(id)
	}
	for _, st := range res.Spawned {
		s.Admit(st)
	}
}

// Sync copies positions and velocities from a snapshot into existing bodies
// and extends their trails. Unknown IDs are admitted.
func (s *Store) Sync(states []shells.State) {
	for _, st := range states {
		e, ok := s.byID[st.ID]
		if !ok {
			s.Admit(st)
			continue
		}
		entry := s.world.Entry(e)
		b := Body.Get(entry)
		b.Position = st.Position
		b.Velocity = st.Velocity
		b.Age++
		if entry.HasComponent(Trail) {
			Trail.Get(entry).Push(st.Position)
		}
	}
}

// Get returns a copy of the body for id.
func (s *Store) Get(id shells.EntityID) (BodyData, bool) {
	e, ok := s.byID[id]
	if !ok {
		return BodyData{}, false
	}
	return *Body.Get(s.world.Entry(e)), true
}

// Len returns the number of stored bodies.
func (s *Store) Len() int {
	return s.bodies.Count(s.world)
}

// Each visits every body. trail is nil when trails are off.
func (s *Store) Each(fn func(b *BodyData, trail *TrailData)) {
	s.bodies.Each(s.world, func(entry *donburi.Entry) {
		var t *TrailData
		if entry.HasComponent(Trail) {
			t = Trail.Get(entry)
		}
		fn(Body.Get(entry), t)
	})
}

// Clear removes every body.
func (s *Store) Clear() {
	for id := range s.byID {
		s.Remove(id)
	}
}
