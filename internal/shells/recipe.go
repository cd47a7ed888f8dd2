package shells

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var (
	ErrUnknownRecipe   = errors.New("unknown recipe")
	ErrDuplicateRecipe = errors.New("duplicate recipe")
	ErrInvalidRecipe   = errors.New("invalid recipe")
)

// Range is a half-open interval [Min, Max) sampled uniformly. Durations drawn
// from a negative range are clamped to zero by NewTimer.
type Range struct {
	Min, Max float64
}

// Sample draws a value in [Min, Max).
func (r Range) Sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Launch parameters shared by every recipe's rocket.
var (
	rocketVelX   = Range{-25, 25}
	rocketVelY   = Range{250, 300}
	rocketLife   = Range{3, 4}
	rocketThrust = Range{1000, 1500}
	rocketBurn   = Range{1.0, 1.5}

	starSpeed = Range{25, 50}
	starLife  = Range{2, 3}
)

// Burst describes the stars released when a shell explodes.
type Burst struct {
	Count  int
	Tag    RenderTag
	Policy PolicyKind
	Thrust Range
	Burn   Range
	// Speed and Life default to the standard star ranges when zero.
	Speed Range
	Life  Range
	// Next, when set, makes every star explode again into its own burst.
	Next *Burst
}

// Recipe is a named firework: a rocket that climbs with gravity cancelled,
// then explodes into Burst.
type Recipe struct {
	Name   string
	Rocket RenderTag
	Burst  Burst
}

// Build generates the full shell tree. All randomness comes from rng, so a
// seeded source yields the same tree every time.
func (r Recipe) Build(rng *rand.Rand) Shell {
	vel := Vec2{X: rocketVelX.Sample(rng), Y: rocketVelY.Sample(rng)}
	life := rocketLife.Sample(rng)
	pol := NewPolicy(NegativeGravityCancel, rocketThrust.Sample(rng), rocketBurn.Sample(rng))
	return Shell{
		Projectile: NewProjectile(vel, life, &pol, r.Rocket, rng),
		Children:   buildBurst(rng, r.Burst),
	}
}

// buildBurst draws one policy for the whole burst, then angle, speed and
// lifetime per star.
func buildBurst(rng *rand.Rand, b Burst) []Shell {
	if b.Count <= 0 {
		return nil
	}
	speed := b.Speed
	if speed == (Range{}) {
		speed = starSpeed
	}
	lifeR := b.Life
	if lifeR == (Range{}) {
		lifeR = starLife
	}
	pol := NewPolicy(b.Policy, b.Thrust.Sample(rng), b.Burn.Sample(rng))

	stars := make([]Shell, 0, b.Count)
	for i := 0; i < b.Count; i++ {
		s := speed.Sample(rng)
		life := lifeR.Sample(rng)
		angle := 2 * math.Pi * rng.Float64()
		star := Shell{
			Projectile: NewProjectile(Polar(s, angle), life, &pol, b.Tag, rng),
		}
		if b.Next != nil {
			star.Children = buildBurst(rng, *b.Next)
		}
		stars = append(stars, star)
	}
	return stars
}

// Catalog is the set of recipes a host can trigger by name.
type Catalog struct {
	recipes map[string]Recipe
}

func NewCatalog() *Catalog {
	return &Catalog{recipes: make(map[string]Recipe)}
}

// DefaultCatalog returns the built-in recipes.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, r := range defaultRecipes() {
		if err := c.Register(r); err != nil {
			panic(err)
		}
	}
	return c
}

func defaultRecipes() []Recipe {
	return []Recipe{
		{
			Name:   "classic",
			Rocket: "rocket",
			Burst: Burst{
				Count: 40, Tag: "copper", Policy: NegativeGravityCancel,
				Thrust: Range{8, 10}, Burn: Range{1.5, 2.0},
			},
		},
		{
			Name:   "bees",
			Rocket: "rocket",
			Burst: Burst{
				Count: 50, Tag: "sodium", Policy: RandomJitter,
				Thrust: Range{8, 10}, Burn: Range{1.5, 2.0},
			},
		},
		{
			Name:   "comet",
			Rocket: "rocket",
			Burst: Burst{
				Count: 30, Tag: "strontium", Policy: ExponentialDecayThrust,
				Thrust: Range{60, 90}, Burn: Range{0.5, 1.0},
			},
		},
		{
			Name:   "crossette",
			Rocket: "rocket",
			Burst: Burst{
				Count: 8, Tag: "barium", Policy: NegativeGravityCancel,
				Thrust: Range{8, 10}, Burn: Range{0.6, 0.9},
				Speed: Range{60, 80}, Life: Range{1.0, 1.4},
				Next: &Burst{
					Count: 12, Tag: "barium", Policy: RandomJitter,
					Thrust: Range{4, 6}, Burn: Range{0.8, 1.2},
				},
			},
		},
	}
}

// Register adds r to the catalog.
func (c *Catalog) Register(r Recipe) error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecipe)
	}
	seen := map[*Burst]bool{}
	for b := &r.Burst; b != nil; b = b.Next {
		if seen[b] {
			return fmt.Errorf("%w: %q has a cyclic burst chain", ErrInvalidRecipe, r.Name)
		}
		seen[b] = true
		if b.Count < 0 {
			return fmt.Errorf("%w: %q has negative burst count", ErrInvalidRecipe, r.Name)
		}
		if !b.Policy.Valid() {
			return fmt.Errorf("%w: %q has unknown policy %d", ErrInvalidRecipe, r.Name, b.Policy)
		}
		if err := checkRanges(b); err != nil {
			return fmt.Errorf("%w: %q %v", ErrInvalidRecipe, r.Name, err)
		}
	}
	if _, ok := c.recipes[r.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRecipe, r.Name)
	}
	c.recipes[r.Name] = r
	return nil
}

func checkRanges(b *Burst) error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"thrust", b.Thrust},
		{"burn", b.Burn},
		{"speed", b.Speed},
		{"life", b.Life},
	}
	for _, rg := range ranges {
		if rg.r.Min > rg.r.Max {
			return fmt.Errorf("has inverted %s range [%v, %v]", rg.name, rg.r.Min, rg.r.Max)
		}
	}
	return nil
}

// Lookup returns the recipe registered under name.
func (c *Catalog) Lookup(name string) (Recipe, bool) {
	r, ok := c.recipes[name]
	return r, ok
}

// Build looks up name and generates its shell tree from rng.
func (c *Catalog) Build(name string, rng *rand.Rand) (Shell, error) {
	r, ok := c.recipes[name]
	if !ok {
		return Shell{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return r.Build(rng), nil
}

// Names returns the registered recipe names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.recipes))
	for n := range c.recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
