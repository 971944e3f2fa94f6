package game

import (
	"image/color"
	"math/rand/v2"

	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/geom"
)

// ItemKind distinguishes collectible items. Only Food is ever spawned; Bomb is
// reserved.
type ItemKind int

const (
	ItemFood ItemKind = iota
	ItemBomb
)

// Item is a falling collectible. X and Y are in fall space: normalized and never
// distorted.
type Item struct {
	Serial uint64
	X, Y   float64
	Speed  float64
	Glyph  string
	Kind   ItemKind
	Value  int
	// Eaten is set by the hit that consumes the item, so it is never credited again
	// before its deferred delete lands.
	Eaten bool
}

// Position returns the item's fall-space position.
func (i *Item) Position() geom.Point {
	return geom.Point{X: i.X, Y: i.Y}
}

// Particle is one piece of decorative confetti, in screen pixels.
type Particle struct {
	Pos   geom.Point
	Vel   geom.Point
	Color color.RGBA
	Life  float64
}

// RegisterComponents registers every entity component of the game.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Item](registry)
	ecs.RegisterComponent[Particle](registry)
}

// Random is the shared random source of one game. Systems draw from it in a fixed
// order, so a seeded source replays a session exactly.
type Random struct {
	*rand.Rand
}

// Between returns a uniform value in [lo, hi).
func (r Random) Between(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Palette holds the parsed particle colours.
type Palette struct {
	Colors []color.RGBA
}
