package shells

import (
	"math"
	"math/rand"
)

// Gravity is the ambient acceleration applied to every projectile (px/s², y up).
var Gravity = Vec2{X: 0, Y: -60}

// decayTau is the ExponentialDecayThrust time constant in seconds (500ms).
const decayTau = 0.5

// PolicyKind enumerates the acceleration strategies a projectile can carry.
type PolicyKind uint8

const (
	// NegativeGravityCancel removes the ambient gravity term while the burn lasts.
	NegativeGravityCancel PolicyKind = iota
	// RandomJitter adds a random impulse of up to thrust on each axis, independent of dt.
	RandomJitter
	// ExponentialDecayThrust pushes along the velocity with thrust decaying over burn time.
	ExponentialDecayThrust

	policyKindCount
)

func (k PolicyKind) String() string {
	switch k {
	case NegativeGravityCancel:
		return "negative_gravity"
	case RandomJitter:
		return "random_jitter"
	case ExponentialDecayThrust:
		return "exponential_decay"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the known strategies.
func (k PolicyKind) Valid() bool {
	return k < policyKindCount
}

// Policy is a time-boxed acceleration strategy attached to a projectile.
// It is applied only while Burn is not finished and is dropped once it is.
type Policy struct {
	Kind   PolicyKind
	Thrust float64
	Burn   Timer
}

// NewPolicy returns a policy with a fresh burn timer of burnSeconds.
func NewPolicy(kind PolicyKind, thrust, burnSeconds float64) Policy {
	return Policy{Kind: kind, Thrust: thrust, Burn: NewTimer(burnSeconds)}
}

// Apply returns velocity adjusted by the policy for a step of dt seconds.
// It does not advance the burn timer. rng is only consumed by RandomJitter.
func (p Policy) Apply(velocity Vec2, dt float64, rng *rand.Rand) Vec2 {
	switch p.Kind {
	case NegativeGravityCancel:
		return velocity.Sub(Gravity.Scale(dt))
	case RandomJitter:
		jitter := Vec2{X: 1 - 2*rng.Float64(), Y: 1 - 2*rng.Float64()}
		return velocity.Add(jitter.Scale(p.Thrust))
	case ExponentialDecayThrust:
		dir, ok := velocity.Normalize()
		if !ok {
			return velocity
		}
		decay := math.Exp(-p.Burn.Elapsed / decayTau)
		return velocity.Add(dir.Scale(p.Thrust * decay * dt))
	default:
		return velocity
	}
}
