package game_test

import (
	"errors"
	"testing"
	"time"

	"github.com/plus3/munch/game"
	"github.com/plus3/munch/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadingBecomesReadyOnFirstFace(t *testing.T) {
	h := newHarness(t, nil)

	h.ticks(3)
	assert.Equal(t, game.PhaseLoading, h.controller.Phase())
	assert.Empty(t, h.events)

	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.6}, false)
	h.tick()
	assert.Equal(t, game.PhaseReady, h.controller.Phase())
	require.Len(t, h.events, 1)
	assert.Equal(t, game.EventPhaseChanged, h.events[0].Kind)
	assert.Equal(t, game.PhaseReady, h.events[0].Phase)

	h.source.landmarks = nil
	h.ticks(3)
	assert.Equal(t, game.PhaseReady, h.controller.Phase(), "losing the face does not go back to loading")
}

func TestShortLandmarkSetIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	h.source.landmarks = make(geom.Landmarks, 20)
	h.tick()
	assert.Equal(t, game.PhaseLoading, h.controller.Phase())
}

func TestTransitionsFromWrongPhase(t *testing.T) {
	h := newHarness(t, nil)

	err := h.controller.Start()
	assert.True(t, errors.Is(err, game.ErrInvalidTransition))
	assert.ErrorIs(t, h.controller.Restart(), game.ErrInvalidTransition)
	assert.Equal(t, game.PhaseLoading, h.controller.Phase())

	h.play()
	assert.ErrorIs(t, h.controller.Start(), game.ErrInvalidTransition)
	assert.ErrorIs(t, h.controller.Restart(), game.ErrInvalidTransition)
	assert.Equal(t, game.PhasePlaying, h.controller.Phase())
}

func TestStartResetsSession(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.6}, false)
	h.tick()

	require.NoError(t, h.controller.Start())
	assert.Equal(t, game.PhasePlaying, h.controller.Phase())
	assert.Equal(t, 0, h.controller.Score())
	assert.Equal(t, 1.0, h.controller.FatFactor())

	changes := h.eventsOf(game.EventPhaseChanged)
	require.NotEmpty(t, changes)
	assert.Equal(t, game.PhasePlaying, changes[len(changes)-1].Phase)
}

func TestItemHitAtMouth(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	h.spawnItem(0.3, 0.5, 0.01)
	h.source.landmarks = face(0.3, geom.Point{X: 0.3, Y: 0.51}, true)
	h.tick()

	assert.Empty(t, h.items(), "eaten item is removed in the same frame")
	assert.Equal(t, 1, h.controller.Score())
	assert.InDelta(t, 1.05, h.controller.FatFactor(), 1e-9)
	assert.Len(t, h.particles(), 10)

	eaten := h.eventsOf(game.EventItemEaten)
	require.Len(t, eaten, 1)
	assert.Equal(t, 1, eaten[0].Score)
	assert.InDelta(t, 300, eaten[0].At.X, 1e-6)
	assert.InDelta(t, 510, eaten[0].At.Y, 1e-6)
}

func TestHitUsesDistortedMouth(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()
	h.controller.Session().FatFactor = 1.5

	// Nose at 0.5 and raw mouth at 0.3 put the stretched mouth at 0.2.
	h.spawnItem(0.3, 0.6, 0)
	h.spawnItem(0.2, 0.6, 0)
	h.source.landmarks = face(0.5, geom.Point{X: 0.3, Y: 0.6}, true)
	h.tick()

	items := h.items()
	require.Len(t, items, 1)
	assert.InDelta(t, 0.3, items[0].X, 1e-9, "item under the raw mouth survives")
	assert.Equal(t, 1, h.controller.Score())
}

func TestHitRadius(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	h.spawnItem(0.5, 0.45, 0)
	h.spawnItem(0.5, 0.43, 0)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)
	h.tick()

	items := h.items()
	require.Len(t, items, 1)
	assert.InDelta(t, 0.43, items[0].Y, 1e-9, "70 px away is not a hit")
	assert.Equal(t, 1, h.controller.Score(), "50 px away is a hit")
}

func TestClosedMouthDoesNotEat(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	h.spawnItem(0.4, 0.4, 0)
	h.source.landmarks = face(0.4, geom.Point{X: 0.4, Y: 0.4}, false)
	h.ticks(5)

	assert.Len(t, h.items(), 1)
	assert.Zero(t, h.controller.Score())
}

func TestNoSignalSuppressesCollision(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	// Without a face the nose falls back to the centre, exactly where the item sits.
	h.spawnItem(0.5, 0.5, 0)
	h.source.landmarks = nil
	h.ticks(5)

	assert.Len(t, h.items(), 1)
	assert.Zero(t, h.controller.Score())
}

func TestItemNeverCreditedTwice(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	h.spawnItem(0.6, 0.3, 0)
	h.source.landmarks = face(0.6, geom.Point{X: 0.6, Y: 0.3}, true)
	h.ticks(30)

	assert.Equal(t, 1, h.controller.Score())
	assert.InDelta(t, 1.05, h.controller.FatFactor(), 1e-9)
	assert.Len(t, h.eventsOf(game.EventItemEaten), 1)
}

func TestItemBelowScreenIsRemoved(t *testing.T) {
	for _, open := range []bool{true, false} {
		h := newHarness(t, quietTuning())
		h.play()

		h.spawnItem(0.5, 1.095, 0.01)
		h.source.landmarks = face(0.2, geom.Point{X: 0.2, Y: 0.2}, open)
		h.tick()

		assert.Empty(t, h.items(), "mouth open=%v", open)
		assert.Zero(t, h.controller.Score())
		assert.Equal(t, 1.0, h.controller.FatFactor())
	}
}

func TestItemAtBoundaryStays(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()

	h.spawnItem(0.5, 1.1, 0)
	h.tick()
	assert.Len(t, h.items(), 1)
}

func TestItemsFreezeOutsidePlaying(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)
	h.tick()
	require.Equal(t, game.PhaseReady, h.controller.Phase())

	h.spawnItem(0.5, 0.5, 0.01)
	h.ticks(10)

	items := h.items()
	require.Len(t, items, 1)
	assert.Equal(t, 0.5, items[0].Y)
	assert.Zero(t, h.controller.Score())
}

func TestGameOverFiresOnceOnSimultaneousHits(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()
	h.controller.Session().FatFactor = 1.9

	for range 5 {
		h.spawnItem(0.5, 0.5, 0)
	}
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)
	h.tick()

	assert.Equal(t, game.PhaseGameOver, h.controller.Phase())
	assert.Equal(t, 5, h.controller.Score())
	assert.Equal(t, 2.0, h.controller.FatFactor(), "fat factor is clamped at the ceiling")
	assert.Len(t, h.eventsOf(game.EventGameOver), 1)

	h.spawnItem(0.5, 0.5, 0)
	h.ticks(10)
	assert.Len(t, h.eventsOf(game.EventGameOver), 1)
	assert.Equal(t, 5, h.controller.Score())
}

func TestGameOverIsDeliveredAfterTheFrame(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()
	h.controller.Session().FatFactor = 1.95

	h.spawnItem(0.5, 0.5, 0)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)
	h.tick()

	require.Len(t, h.events, 3)
	assert.Equal(t, game.EventItemEaten, h.events[0].Kind)
	assert.Equal(t, game.PhasePlaying, h.events[0].Phase, "the hit is credited while still playing")
	assert.Equal(t, game.EventPhaseChanged, h.events[1].Kind)
	assert.Equal(t, game.PhaseGameOver, h.events[1].Phase)
	assert.Equal(t, game.EventGameOver, h.events[2].Kind)
	assert.Equal(t, 1, h.events[2].Score)
}

func TestReachingCeilingByRepeatedSteps(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)

	for i := range 20 {
		require.Equal(t, game.PhasePlaying, h.controller.Phase(), "hit %d", i)
		h.spawnItem(0.5, 0.5, 0)
		h.tick()
	}

	assert.Equal(t, 20, h.controller.Score())
	assert.Equal(t, game.PhaseGameOver, h.controller.Phase())
	assert.Len(t, h.eventsOf(game.EventGameOver), 1)
}

func TestRestartResetsScoreAndFat(t *testing.T) {
	h := newHarness(t, quietTuning())
	h.play()
	h.controller.Session().FatFactor = 1.97
	h.controller.Session().Score = 41

	h.spawnItem(0.5, 0.5, 0)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, true)
	h.tick()
	require.Equal(t, game.PhaseGameOver, h.controller.Phase())
	require.Equal(t, 42, h.controller.Score())

	require.NoError(t, h.controller.Restart())
	assert.Equal(t, game.PhasePlaying, h.controller.Phase())
	assert.Equal(t, 0, h.controller.Score())
	assert.Equal(t, 1.0, h.controller.FatFactor())

	// A fresh run can reach game over again.
	h.controller.Session().FatFactor = 1.96
	h.spawnItem(0.5, 0.5, 0)
	h.tick()
	assert.Equal(t, game.PhaseGameOver, h.controller.Phase())
	assert.Len(t, h.eventsOf(game.EventGameOver), 2)
}

func TestSpawnCadence(t *testing.T) {
	h := newHarness(t, nil)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, false)
	h.tick()
	require.NoError(t, h.controller.Start())

	h.tick()
	require.Len(t, h.items(), 1, "first item spawns immediately")

	h.advance(500 * time.Millisecond)
	h.tick()
	h.advance(500 * time.Millisecond)
	h.tick()
	assert.Len(t, h.items(), 1, "exactly one interval is not enough")

	h.advance(time.Millisecond)
	h.tick()
	assert.Len(t, h.items(), 2)

	tuning := game.DefaultTuning()
	serials := map[uint64]bool{}
	for _, item := range h.items() {
		serials[item.Serial] = true
		assert.GreaterOrEqual(t, item.X, 0.1)
		assert.LessOrEqual(t, item.X, 0.9)
		assert.GreaterOrEqual(t, item.Speed, 0.005)
		assert.LessOrEqual(t, item.Speed, 0.010)
		assert.Contains(t, tuning.Glyphs, item.Glyph)
		assert.Equal(t, game.ItemFood, item.Kind)
		assert.Equal(t, 1, item.Value)
		assert.Greater(t, item.Y, -0.1)
	}
	assert.Len(t, serials, 2)
}

func TestSpawnedItemStartsAboveScreen(t *testing.T) {
	h := newHarness(t, nil)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.5}, false)
	h.tick()
	require.NoError(t, h.controller.Start())
	h.tick()

	items := h.items()
	require.Len(t, items, 1)
	assert.InDelta(t, -0.1+items[0].Speed, items[0].Y, 1e-9, "spawned at -0.1 and advanced once")
}

func TestEndToEndFirstBite(t *testing.T) {
	h := newHarness(t, nil)
	h.source.landmarks = face(0.5, geom.Point{X: 0.5, Y: 0.9}, false)
	h.tick()
	require.NoError(t, h.controller.Start())
	require.Equal(t, 1.0, h.controller.FatFactor())

	// t=0: the first item spawns.
	h.tick()
	items := h.items()
	require.Len(t, items, 1)
	item := items[0]

	// t=1000ms: the open mouth sits where the item will be after this frame's advance.
	h.advance(time.Second)
	h.source.landmarks = face(item.X, geom.Point{X: item.X, Y: item.Y + item.Speed}, true)
	h.tick()

	assert.Equal(t, 1, h.controller.Score())
	assert.InDelta(t, 1.05, h.controller.FatFactor(), 1e-9)
	assert.Len(t, h.particles(), 10)
	assert.Empty(t, h.items())
	assert.Len(t, h.eventsOf(game.EventItemEaten), 1)
}

func TestInvalidTuningIsRejected(t *testing.T) {
	tuning := game.DefaultTuning()
	tuning.Glyphs = nil

	_, err := game.NewController(nil, nil, game.Options{Tuning: &tuning})
	assert.ErrorIs(t, err, game.ErrInvalidTuning)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Loading", game.PhaseLoading.String())
	assert.Equal(t, "GameOver", game.PhaseGameOver.String())
	assert.Equal(t, "Phase(9)", game.Phase(9).String())
	assert.Equal(t, "ItemEaten", game.EventItemEaten.String())
}
