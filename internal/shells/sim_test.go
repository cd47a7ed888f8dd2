package shells

import (
	"errors"
	"math"
	"testing"
)

func leaf(vel Vec2, life float64, tag RenderTag) Shell {
	return Shell{Projectile: Projectile{Velocity: vel, Lifetime: NewTimer(life), Tag: tag}}
}

func TestSim_ConcreteGravityStep(t *testing.T) {
	s := NewSim(WithSeed(1))
	st := s.Spawn(leaf(Vec2{X: 0, Y: 100}, 10, "p"), Vec2{})
	res := s.Tick(1.0)
	if len(res.Despawned) != 0 || len(res.Spawned) != 0 {
		t.Fatalf("nothing should expire in the first second, got %+v", res)
	}
	got, ok := s.Lookup(st.ID)
	if !ok {
		t.Fatal("projectile should still be alive")
	}
	if got.Velocity != (Vec2{X: 0, Y: 40}) {
		t.Fatalf("velocity = %+v, want (0,40)", got.Velocity)
	}
	if got.Position != (Vec2{X: 0, Y: 40}) {
		t.Fatalf("position delta = %+v, want (0,40)", got.Position)
	}
	if rem := s.entries[0].proj.Lifetime.Remaining(); rem != 9 {
		t.Fatalf("remaining lifetime = %.3f, want 9", rem)
	}
}

func TestSim_ExplodesExactlyOnce(t *testing.T) {
	s := NewSim(WithSeed(1))
	st := s.Spawn(leaf(Vec2{Y: 10}, 1.0, "p"), Vec2{})
	for tick := 1; tick <= 6; tick++ {
		res := s.Tick(0.25)
		fired := len(res.Despawned) == 1 && res.Despawned[0] == st.ID
		if tick == 4 && !fired {
			t.Fatalf("expected expiry at tick 4, got %+v", res)
		}
		if tick != 4 && len(res.Despawned) != 0 {
			t.Fatalf("unexpected despawn at tick %d: %+v", tick, res)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("population should be empty, got %d", s.Len())
	}
	if n := s.Log().CountCategory("explode", ""); n != 1 {
		t.Fatalf("expected one explode event, got %d\n%s", n, s.Log().Format())
	}
}

func TestSim_ChildrenSpawnAtParentPosition(t *testing.T) {
	s := NewSim(WithSeed(1))
	root := leaf(Vec2{}, 0.5, "rocket")
	root.Children = []Shell{
		leaf(Vec2{X: 5, Y: 5}, 1, "star"),
		leaf(Vec2{X: -5, Y: 5}, 1, "star"),
	}
	parent := s.Spawn(root, Vec2{X: 100, Y: 200})

	s.Tick(0.25)
	res := s.Tick(0.25)

	if len(res.Despawned) != 1 || res.Despawned[0] != parent.ID {
		t.Fatalf("expected parent despawn, got %+v", res.Despawned)
	}
	if len(res.Spawned) != 2 {
		t.Fatalf("expected 2 children, got %d", len(res.Spawned))
	}
	want := Vec2{X: 100, Y: 188.75}
	for i, c := range res.Spawned {
		if c.Position != want {
			t.Fatalf("child %d at %+v, want %+v", i, c.Position, want)
		}
		if c.Velocity != root.Children[i].Projectile.Velocity {
			t.Fatalf("child %d velocity %+v should match template", i, c.Velocity)
		}
		if c.Tag != "star" {
			t.Fatalf("child %d tag = %q", i, c.Tag)
		}
		if c.ID <= parent.ID {
			t.Fatalf("child ID %d should be newer than parent %d", c.ID, parent.ID)
		}
	}
	if got := s.ActiveStates(); len(got) != 2 || got[0].ID != res.Spawned[0].ID {
		t.Fatalf("active states should be the two children, got %+v", got)
	}
}

// A child with zero lifetime is already expired when admitted; it must still
// wait for the next tick to explode.
func TestSim_NoSameTickCascade(t *testing.T) {
	s := NewSim(WithSeed(1))
	grandchild := leaf(Vec2{}, 0, "spark")
	child := leaf(Vec2{}, 0, "star")
	child.Children = []Shell{grandchild}
	root := leaf(Vec2{}, 0.25, "rocket")
	root.Children = []Shell{child}
	s.Spawn(root, Vec2{})

	res := s.Tick(0.25)
	if len(res.Despawned) != 1 || len(res.Spawned) != 1 {
		t.Fatalf("tick 1: want 1 despawn and 1 spawn, got %+v", res)
	}
	childID := res.Spawned[0].ID
	for _, id := range res.Despawned {
		if id == childID {
			t.Fatal("child must not despawn in the tick that created it")
		}
	}
	if _, ok := s.Lookup(childID); !ok {
		t.Fatal("child should be visible after the tick returns")
	}

	res = s.Tick(0.25)
	if len(res.Despawned) != 1 || res.Despawned[0] != childID {
		t.Fatalf("tick 2: child should explode, got %+v", res)
	}
	if len(res.Spawned) != 1 || res.Spawned[0].Tag != "spark" {
		t.Fatalf("tick 2: grandchild should spawn, got %+v", res.Spawned)
	}

	res = s.Tick(0.25)
	if len(res.Despawned) != 1 || len(res.Spawned) != 0 || s.Len() != 0 {
		t.Fatalf("tick 3: grandchild should despawn as a leaf, got %+v (len=%d)", res, s.Len())
	}
}

func TestSim_ZeroLifetimeRootExplodesWithoutMoving(t *testing.T) {
	s := NewSim(WithSeed(1))
	root := leaf(Vec2{X: 50, Y: 50}, 0, "rocket")
	root.Children = []Shell{leaf(Vec2{}, 1, "star")}
	s.Spawn(root, Vec2{X: 7, Y: 9})
	res := s.Tick(0.1)
	if len(res.Spawned) != 1 || res.Spawned[0].Position != (Vec2{X: 7, Y: 9}) {
		t.Fatalf("child should appear at the launch point, got %+v", res.Spawned)
	}
}

func TestSim_BadDTIsNoTime(t *testing.T) {
	s := NewSim(WithSeed(1))
	st := s.Spawn(leaf(Vec2{X: 1, Y: 1}, 1, "p"), Vec2{X: 2, Y: 3})
	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		res := s.Tick(dt)
		if len(res.Despawned) != 0 {
			t.Fatalf("dt=%v should not expire anything", dt)
		}
	}
	got, _ := s.Lookup(st.ID)
	if got.Position != (Vec2{X: 2, Y: 3}) || got.Velocity != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("state changed under invalid dt: %+v", got)
	}
	if s.CurrentTick() != 3 {
		t.Fatalf("tick count = %d, want 3", s.CurrentTick())
	}
}

func TestSim_TemplateNotMutated(t *testing.T) {
	s := NewSim(WithSeed(3))
	root, err := s.Catalog().Build("classic", s.rng)
	if err != nil {
		t.Fatal(err)
	}
	s.Spawn(root, Vec2{})
	for i := 0; i < 600; i++ {
		s.Tick(1.0 / 60)
	}
	if root.Projectile.Lifetime.Elapsed != 0 {
		t.Fatalf("template lifetime advanced to %.3f", root.Projectile.Lifetime.Elapsed)
	}
	if root.Projectile.Policy == nil || root.Projectile.Policy.Burn.Elapsed != 0 {
		t.Fatalf("template policy was modified: %+v", root.Projectile.Policy)
	}
	for _, c := range root.Children {
		if c.Projectile.Lifetime.Elapsed != 0 || c.Projectile.Policy == nil {
			t.Fatal("template children were modified")
		}
	}
}

func TestSim_LaunchUnknownRecipe(t *testing.T) {
	s := NewSim(WithSeed(1))
	if _, err := s.Launch("nope", Vec2{}); !errors.Is(err, ErrUnknownRecipe) {
		t.Fatalf("expected ErrUnknownRecipe, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("failed launch should not admit anything")
	}
}

func TestSim_ClassicLifecycleStats(t *testing.T) {
	s := NewSim(WithSeed(21))
	if _, err := s.Launch("classic", Vec2{}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 600 && s.Len() > 0; i++ {
		s.Tick(1.0 / 60)
	}
	st := s.Stats()
	if st.Active != 0 {
		t.Fatalf("population should have burnt out, %d left", st.Active)
	}
	if st.Launched != 1 || st.Exploded != 1 || st.Spawned != 40 || st.Despawned != 41 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if st.PeakActive != 40 {
		t.Fatalf("peak active = %d, want 40", st.PeakActive)
	}
	if st.Detached != 41 {
		t.Fatalf("every burn should end before its shell expires, detached=%d", st.Detached)
	}
	log := s.Log()
	if log.CountCategory("launch", "root") != 1 || log.CountCategory("explode", "burst") != 1 {
		t.Fatalf("unexpected log:\n%s", log.Format())
	}
	if log.CountCategory("explode", "leaf") != 40 {
		t.Fatalf("expected 40 leaf expiries, got %d", log.CountCategory("explode", "leaf"))
	}
	if !log.HasEntry("policy", "detach", "negative_gravity") {
		t.Fatal("expected a negative_gravity detach entry")
	}
}

func TestSim_ActiveStatesIsSnapshot(t *testing.T) {
	s := NewSim(WithSeed(1))
	s.Spawn(leaf(Vec2{Y: 10}, 5, "p"), Vec2{})
	snap := s.ActiveStates()
	snap[0].Position = Vec2{X: 999}
	if s.ActiveStates()[0].Position == (Vec2{X: 999}) {
		t.Fatal("mutating a snapshot must not affect the simulation")
	}
	before := s.ActiveStates()
	_ = s.ActiveStates()
	if s.ActiveStates()[0] != before[0] {
		t.Fatal("reading states must not advance the simulation")
	}
}
