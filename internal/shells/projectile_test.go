package shells

import (
	"math"
	"math/rand"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nearVec(a, b Vec2) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

// --- Policies ---

func TestPolicy_NegativeGravityCancelsGravityStep(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pol := NewPolicy(NegativeGravityCancel, 1200, 1)
	v := Vec2{X: 5, Y: 250}
	dt := 1.0 / 60
	after := pol.Apply(v.Add(Gravity.Scale(dt)), dt, rng)
	if !nearVec(after, v) {
		t.Fatalf("gravity + cancel should leave velocity unchanged, got %+v want %+v", after, v)
	}
}

func TestPolicy_RandomJitterIsDTIndependent(t *testing.T) {
	pol := NewPolicy(RandomJitter, 9, 2)
	v := Vec2{X: 10, Y: 10}
	a := pol.Apply(v, 0, rand.New(rand.NewSource(7)))
	b := pol.Apply(v, 1, rand.New(rand.NewSource(7)))
	if a != b {
		t.Fatalf("jitter should not depend on dt: %+v vs %+v", a, b)
	}
	d := a.Sub(v)
	if math.Abs(d.X) > 9 || math.Abs(d.Y) > 9 {
		t.Fatalf("jitter exceeded thrust bound: %+v", d)
	}
	if d == (Vec2{}) {
		t.Fatal("jitter should move the velocity")
	}
}

func TestPolicy_ExponentialDecayAlongVelocity(t *testing.T) {
	pol := NewPolicy(ExponentialDecayThrust, 100, 2)
	pol.Burn.Tick(0.5)
	v := Vec2{X: 30, Y: 40}
	got := pol.Apply(v, 0.1, nil)
	boost := 100 * math.Exp(-0.5/decayTau) * 0.1
	want := Vec2{X: 30 + 0.6*boost, Y: 40 + 0.8*boost}
	if !nearVec(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestProjectile_ExponentialDecayUsesAdvancedBurn(t *testing.T) {
	pol := NewPolicy(ExponentialDecayThrust, 100, 2)
	p := Projectile{Velocity: Vec2{Y: 100}, Lifetime: NewTimer(10), Policy: &pol}

	// The burn timer advances before the thrust is applied, so the first
	// step already decays by exp(-dt/tau).
	p.Step(0.5, nil)
	wantY := 100 - 60*0.5 + 100*math.Exp(-0.5/decayTau)*0.5
	if !nearVec(p.Velocity, Vec2{Y: wantY}) {
		t.Fatalf("after step 1: got %+v want y=%.4f", p.Velocity, wantY)
	}

	p.Step(0.5, nil)
	wantY += -60*0.5 + 100*math.Exp(-1.0/decayTau)*0.5
	if !nearVec(p.Velocity, Vec2{Y: wantY}) {
		t.Fatalf("after step 2: got %+v want y=%.4f", p.Velocity, wantY)
	}
	if p.Policy == nil || !near(p.Policy.Burn.Elapsed, 1.0) {
		t.Fatalf("policy should still burn with 1s elapsed, got %+v", p.Policy)
	}
}

func TestPolicy_ExponentialDecaySkipsZeroVelocity(t *testing.T) {
	pol := NewPolicy(ExponentialDecayThrust, 100, 2)
	got := pol.Apply(Vec2{}, 0.1, nil)
	if got != (Vec2{}) || !got.Finite() {
		t.Fatalf("zero velocity should stay zero without NaN, got %+v", got)
	}
}

func TestPolicyKind_String(t *testing.T) {
	cases := map[PolicyKind]string{
		NegativeGravityCancel:  "negative_gravity",
		RandomJitter:           "random_jitter",
		ExponentialDecayThrust: "exponential_decay",
		PolicyKind(99):         "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d: got %q want %q", k, got, want)
		}
	}
	if PolicyKind(99).Valid() {
		t.Fatal("99 should not be a valid policy kind")
	}
}

// --- Projectile step ---

func TestProjectileStep_GravityOnly(t *testing.T) {
	p := Projectile{Velocity: Vec2{X: 0, Y: 100}, Lifetime: NewTimer(10)}
	p.Step(1.0, nil)
	if p.Velocity != (Vec2{X: 0, Y: 40}) {
		t.Fatalf("velocity should be (0,40), got %+v", p.Velocity)
	}
	if p.Lifetime.Remaining() != 9 || p.Expired() {
		t.Fatalf("expected 9s remaining, got %.3f (expired=%v)", p.Lifetime.Remaining(), p.Expired())
	}
}

func TestProjectileStep_PolicyDetachesOnce(t *testing.T) {
	pol := NewPolicy(NegativeGravityCancel, 1000, 0.5)
	p := NewProjectile(Vec2{X: 0, Y: 200}, 10, &pol, "rocket", nil)

	if p.Step(0.25, nil) {
		t.Fatal("policy should not detach after first quarter second")
	}
	if !nearVec(p.Velocity, Vec2{X: 0, Y: 200}) {
		t.Fatalf("burning rocket should ignore gravity, got %+v", p.Velocity)
	}
	if !p.Step(0.25, nil) {
		t.Fatal("policy should detach when burn reaches 0.5s")
	}
	if p.Policy != nil {
		t.Fatal("policy should be nil after detaching")
	}
	for i := 0; i < 3; i++ {
		if p.Step(0.25, nil) {
			t.Fatal("detach must be reported only once")
		}
	}
	// Three gravity-only quarter seconds after the burn.
	if !nearVec(p.Velocity, Vec2{X: 0, Y: 200 - 3*15}) {
		t.Fatalf("expected gravity-only motion after burn, got %+v", p.Velocity)
	}
}

func TestProjectileStep_ZeroBurnNeverApplied(t *testing.T) {
	pol := NewPolicy(RandomJitter, 50, 0)
	rng := rand.New(rand.NewSource(3))
	p := NewProjectile(Vec2{X: 1, Y: 1}, 5, &pol, "x", rng)
	if p.Velocity != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("finished policy must not kick at construction, got %+v", p.Velocity)
	}
	if !p.Step(0.5, rng) {
		t.Fatal("zero-burn policy should detach on first step")
	}
	if !nearVec(p.Velocity, Vec2{X: 1, Y: 1 - 30}) {
		t.Fatalf("expected gravity only, got %+v", p.Velocity)
	}
}

func TestProjectileStep_ExpiredIsTerminal(t *testing.T) {
	p := Projectile{Velocity: Vec2{X: 3, Y: 4}, Lifetime: NewTimer(0)}
	p.Step(1, nil)
	if p.Velocity != (Vec2{X: 3, Y: 4}) {
		t.Fatalf("expired projectile must not integrate, got %+v", p.Velocity)
	}
}

func TestNewProjectile_ZeroDTKickForJitter(t *testing.T) {
	pol := NewPolicy(RandomJitter, 10, 1)
	p := NewProjectile(Vec2{}, 1, &pol, "sodium", rand.New(rand.NewSource(11)))
	if p.Velocity == (Vec2{}) {
		t.Fatal("jitter policy should kick the velocity at construction")
	}
	if p.Policy == &pol {
		t.Fatal("projectile should own a copy of the policy")
	}
}

func TestProjectileClone_FreshTimers(t *testing.T) {
	pol := NewPolicy(NegativeGravityCancel, 1, 1)
	p := NewProjectile(Vec2{Y: 1}, 2, &pol, "t", nil)
	p.Step(0.5, nil)
	c := p.clone()
	if c.Lifetime.Elapsed != 0 || c.Policy.Burn.Elapsed != 0 {
		t.Fatalf("clone should reset timers, got life=%.2f burn=%.2f", c.Lifetime.Elapsed, c.Policy.Burn.Elapsed)
	}
	if c.Policy == p.Policy {
		t.Fatal("clone should not share the policy pointer")
	}
}
