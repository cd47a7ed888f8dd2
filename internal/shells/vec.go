package shells

import "math"

// normEpsilon is the magnitude below which a vector has no usable direction.
const normEpsilon = 1e-9

// Vec2 is a 2D vector in world units (y up).
type Vec2 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector in v's direction. ok is false when v is
// too short to have a direction; the returned vector is then zero.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l < normEpsilon || math.IsInf(l, 0) || math.IsNaN(l) {
		return Vec2{}, false
	}
	return Vec2{X: v.X / l, Y: v.Y / l}, true
}

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Polar builds a vector of length r at angle radians from +X.
func Polar(r, angle float64) Vec2 {
	return Vec2{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// sanitizeDT clamps negative, NaN and infinite deltas to zero.
func sanitizeDT(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	return dt
}
