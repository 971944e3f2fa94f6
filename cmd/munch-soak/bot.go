package main

import (
	"math"

	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/geom"
)

const (
	meshSize  = 468
	mouthLine = 0.7
	openGap   = 0.1
	// reach is how far, in fall space, the bot slides its face per frame.
	reach = 0.02
)

// Bot is a synthetic player. It slides its face under the lowest item still above its
// mouth and opens wide when the item is close. Every dropEvery frames it loses the face
// for one frame.
type Bot struct {
	items     *ecs.Query[struct{ *game.Item }]
	dropEvery uint64

	x      float64
	frames uint64
}

// NewBot creates a bot watching the items in storage.
func NewBot(storage *ecs.Storage, dropEvery uint64) *Bot {
	return &Bot{
		items:     ecs.NewQuery[struct{ *game.Item }](storage),
		dropEvery: dropEvery,
		x:         0.5,
	}
}

// Current implements game.LandmarkSource.
func (b *Bot) Current() (geom.Landmarks, bool) {
	b.frames++
	if b.dropEvery > 0 && b.frames%b.dropEvery == 0 {
		return nil, false
	}

	target, near := b.target()
	b.x += math.Max(-reach, math.Min(reach, target-b.x))
	open := near && math.Abs(target-b.x) < reach
	return Face(geom.Point{X: b.x, Y: mouthLine}, open), true
}

func (b *Bot) target() (x float64, near bool) {
	b.items.Execute()

	best := -1.0
	x = 0.5
	for entry := range b.items.Iter() {
		item := entry.Item
		if item.Eaten || item.Y > mouthLine || item.Y < best {
			continue
		}
		best, x = item.Y, item.X
	}
	return x, best > mouthLine-0.15
}

// Face builds a full mesh whose nose sits directly above mouth, so the stretched
// mouth point equals the raw one at any fat factor.
func Face(mouth geom.Point, open bool) geom.Landmarks {
	gap := 0.0
	if open {
		gap = openGap
	}

	l := make(geom.Landmarks, meshSize)
	for i := range l {
		l[i] = mouth
	}
	l[geom.NoseTip] = geom.Point{X: mouth.X, Y: mouth.Y - 0.1}
	l[geom.HeadTop] = geom.Point{X: mouth.X, Y: mouth.Y - 0.4}
	l[geom.Chin] = geom.Point{X: mouth.X, Y: mouth.Y + 0.3}
	l[geom.UpperLip] = geom.Point{X: mouth.X, Y: mouth.Y - gap/2}
	l[geom.LowerLip] = geom.Point{X: mouth.X, Y: mouth.Y + gap/2}
	return l
}
