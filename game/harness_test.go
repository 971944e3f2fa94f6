package game_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/geom"
	"github.com/stretchr/testify/require"
)

const (
	screenW = 1000.0
	screenH = 1000.0
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	landmarks geom.Landmarks
}

func (f *fakeSource) Current() (geom.Landmarks, bool) {
	return f.landmarks, f.landmarks != nil
}

// harness drives a Controller with a manual clock and a seeded random source.
type harness struct {
	t          *testing.T
	controller *game.Controller
	source     *fakeSource
	now        time.Time
	events     []game.Event
}

func newHarness(t *testing.T, tuning *game.Tuning) *harness {
	t.Helper()

	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	h := &harness{t: t, source: &fakeSource{}, now: epoch}
	controller, err := game.NewController(storage, h.source, game.Options{
		Tuning: tuning,
		Clock:  func() time.Time { return h.now },
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Width:  screenW,
		Height: screenH,
	})
	require.NoError(t, err)

	controller.Subscribe(func(e game.Event) {
		h.events = append(h.events, e)
	})
	h.controller = controller
	return h
}

// quietTuning disables automatic spawning after the first interval check so tests
// control the item set.
func quietTuning() *game.Tuning {
	tuning := game.DefaultTuning()
	tuning.SpawnInterval = time.Hour
	return &tuning
}

func (h *harness) tick() {
	h.controller.Tick(screenW, screenH)
}

func (h *harness) ticks(n int) {
	for range n {
		h.tick()
	}
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// play brings the controller from Loading to Playing without spawning anything.
func (h *harness) play() {
	h.t.Helper()
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.9}, false)
	h.tick()
	require.Equal(h.t, game.PhaseReady, h.controller.Phase())
	require.NoError(h.t, h.controller.Start())
	h.controller.Session().LastSpawn = h.now
	h.events = nil
}

func (h *harness) spawnItem(x, y, speed float64) {
	h.controller.Storage().Spawn(game.Item{X: x, Y: y, Speed: speed, Glyph: "🍖", Kind: game.ItemFood, Value: 1})
}

func (h *harness) items() []game.Item {
	q := ecs.NewQuery[struct{ *game.Item }](h.controller.Storage())
	q.Execute()
	var items []game.Item
	for entry := range q.Iter() {
		items = append(items, *entry.Item)
	}
	return items
}

func (h *harness) particles() []game.Particle {
	q := ecs.NewQuery[struct{ *game.Particle }](h.controller.Storage())
	q.Execute()
	var particles []game.Particle
	for entry := range q.Iter() {
		particles = append(particles, *entry.Particle)
	}
	return particles
}

func (h *harness) eventsOf(kind game.EventKind) []game.Event {
	var out []game.Event
	for _, e := range h.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// face builds a FaceMesh-sized landmark set with the nose at noseX, the mouth centred
// on mouth and the lips apart when open.
func face(noseX float64, mouth geom.Point, open bool) geom.Landmarks {
	gap := 0.0
	if open {
		gap = 0.1
	}

	l := make(geom.Landmarks, 468)
	l[geom.NoseTip] = geom.Point{X: noseX, Y: mouth.Y - 0.1}
	l[geom.HeadTop] = geom.Point{X: mouth.X, Y: mouth.Y - 0.4}
	l[geom.Chin] = geom.Point{X: mouth.X, Y: mouth.Y + 0.4}
	l[geom.UpperLip] = geom.Point{X: mouth.X, Y: mouth.Y - gap/2}
	l[geom.LowerLip] = geom.Point{X: mouth.X, Y: mouth.Y + gap/2}
	return l
}
