package ecs_test

import (
	"testing"
	"time"

	"github.com/plus3/munch/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type SpawnerSystem struct{}

func (s *SpawnerSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Storage.Spawn(Position{}, Velocity{DX: 1})
}

type TotalHealthSystem struct {
	Total ecs.Singleton[Health]
	Items ecs.Query[struct{ *Health }]
}

func (s *TotalHealthSystem) Execute(frame *ecs.UpdateFrame) {
	total := s.Total.Get()
	total.Current = 0
	for item := range s.Items.Iter() {
		total.Current += item.Health.Current
	}
}

func TestSchedulerRunsSystemsInOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	movement := &MovementSystem{}
	scheduler.Register(movement)

	id := storage.Spawn(Position{}, Velocity{DX: 1, DY: 2})
	scheduler.Once(0.5)
	scheduler.Once(0.5)

	assert.Equal(t, 2, movement.ExecuteCount)
	assert.Equal(t, Position{X: 1, Y: 2}, *ecs.ReadComponent[Position](storage, id))
}

func TestSchedulerRefreshesQueriesPerSystem(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	scheduler.Register(&SpawnerSystem{})
	movement := &MovementSystem{}
	scheduler.Register(movement)

	scheduler.Once(1)

	q := ecs.NewQuery[struct{ *Position }](storage)
	q.Execute()
	require.Equal(t, 1, q.Len())
	for item := range q.Iter() {
		assert.Equal(t, float32(1), item.Position.X, "entity spawned by an earlier system moves the same frame")
	}
}

func TestSchedulerBindsSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Health](storage)
	storage.Spawn(Health{Current: 50}, Tag("a"))
	storage.Spawn(Health{Current: 25})

	scheduler := ecs.NewScheduler(storage)
	system := &TotalHealthSystem{}
	scheduler.Register(system)
	scheduler.Once(0)

	assert.Equal(t, 75, system.Total.Get().Current)
}

func TestSchedulerClockAndTick(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	scheduler.Clock = func() time.Time { return now }

	var frames []ecs.UpdateFrame
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		frames = append(frames, *frame)
	}))

	scheduler.Once(0.016)
	now = now.Add(time.Second)
	scheduler.Once(0.016)

	require.Len(t, frames, 2)
	assert.Equal(t, uint64(1), frames[0].Tick)
	assert.Equal(t, uint64(2), frames[1].Tick)
	assert.Equal(t, start, frames[0].Now)
	assert.Equal(t, start.Add(time.Second), frames[1].Now)
	assert.Same(t, storage, frames[0].Storage)
}

type sleepySystem struct {
	sleep time.Duration
}

func (s *sleepySystem) Execute(frame *ecs.UpdateFrame) {
	time.Sleep(s.sleep)
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	stats := scheduler.GetStats()
	assert.Zero(t, stats.SystemCount)
	assert.Zero(t, stats.TotalExecutions)

	scheduler.Register(&sleepySystem{sleep: time.Millisecond})
	scheduler.Register(&sleepySystem{sleep: 2 * time.Millisecond})

	for range 3 {
		scheduler.Once(0.016)
	}

	stats = scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	require.Len(t, stats.Systems, 2)

	for _, sys := range stats.Systems {
		assert.Equal(t, "sleepySystem", sys.Name)
		assert.Equal(t, int64(3), sys.ExecutionCount)
		assert.NotZero(t, sys.MinDuration)
		assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
		assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
		assert.Equal(t, sys.TotalDuration, sys.AvgDuration*3+sys.TotalDuration%3)
	}
}
