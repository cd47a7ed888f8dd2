package shells

import "math/rand"

// RenderTag is an opaque sprite/asset key chosen by the host. The core stores
// and returns it verbatim.
type RenderTag string

func (t RenderTag) String() string {
	return string(t)
}

// Projectile is a single simulated body: velocity, a lifetime countdown and an
// optional one-shot acceleration policy.
type Projectile struct {
	Velocity Vec2
	Lifetime Timer
	Policy   *Policy
	Tag      RenderTag
}

// NewProjectile builds a projectile and applies its policy once with dt = 0,
// which seeds impulse-style policies before the first tick.
func NewProjectile(velocity Vec2, lifetime float64, policy *Policy, tag RenderTag, rng *rand.Rand) Projectile {
	p := Projectile{
		Velocity: velocity,
		Lifetime: NewTimer(lifetime),
		Tag:      tag,
	}
	if policy != nil {
		pol := *policy
		p.Policy = &pol
		if !pol.Burn.Finished() {
			p.Velocity = pol.Apply(p.Velocity, 0, rng)
		}
	}
	return p
}

// Expired reports whether the lifetime has run out.
func (p *Projectile) Expired() bool {
	return p.Lifetime.Finished()
}

// Step advances the projectile by dt seconds:
//  1. gravity
//  2. burn timer, then policy
//  3. drop the policy once its burn is finished
//  4. lifetime
//
// Expired projectiles are not integrated. detached is true on the step that
// dropped the policy.
func (p *Projectile) Step(dt float64, rng *rand.Rand) (detached bool) {
	if p.Expired() {
		return false
	}
	dt = sanitizeDT(dt)

	p.Velocity = p.Velocity.Add(Gravity.Scale(dt))

	if p.Policy != nil {
		if !p.Policy.Burn.Finished() {
			p.Policy.Burn.Tick(dt)
			p.Velocity = p.Policy.Apply(p.Velocity, dt, rng)
		}
		if p.Policy.Burn.Finished() {
			p.Policy = nil
			detached = true
		}
	}

	p.Lifetime.Tick(dt)
	return detached
}

// clone returns a deep copy with fresh timers, so a template is never mutated
// by the simulation that instantiates it.
func (p Projectile) clone() Projectile {
	out := p
	out.Lifetime.Reset()
	if p.Policy != nil {
		pol := *p.Policy
		pol.Burn.Reset()
		out.Policy = &pol
	}
	return out
}
