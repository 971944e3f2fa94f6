package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/plus3/munch/ecs"
)

// FrameDelta is the logic step handed to the scheduler. Motion is per tick, so it is
// informational.
const FrameDelta = 1.0 / 60.0

// ErrInvalidTransition is returned by Start and Restart when called from the wrong
// phase.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Options configures a Controller. The zero value uses DefaultTuning, the wall clock
// and a randomly seeded source.
type Options struct {
	Tuning *Tuning
	Clock  func() time.Time
	Rand   *rand.Rand
	// Width and Height are the initial viewport size.
	Width, Height float64
}

// Controller owns one game: its storage, the logic scheduler and the subscribers to
// its events. All methods must be called from the game loop goroutine.
type Controller struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	session  *ecs.Singleton[Session]
	viewport *ecs.Singleton[Viewport]
	outbox   *ecs.Singleton[Outbox]
	tuning   *ecs.Singleton[Tuning]

	subscribers []func(Event)
}

// NewController creates the game singletons in storage and registers the logic
// systems. Components must already be registered with RegisterComponents.
func NewController(storage *ecs.Storage, source LandmarkSource, opts Options) (*Controller, error) {
	tuning := DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}

	c := &Controller{
		storage:  storage,
		session:  ecs.NewSingleton[Session](storage, Session{Phase: PhaseLoading, FatFactor: 1.0}),
		viewport: ecs.NewSingleton[Viewport](storage, Viewport{Width: width, Height: height}),
		outbox:   ecs.NewSingleton[Outbox](storage),
		tuning:   ecs.NewSingleton[Tuning](storage, tuning),
	}
	ecs.NewSingleton[Perception](storage)
	ecs.NewSingleton[Mouth](storage, Mouth{Nose: centre})
	ecs.NewSingleton[Random](storage, Random{Rand: rng})
	ecs.NewSingleton[Palette](storage, Palette{Colors: tuning.Colors()})

	c.scheduler = ecs.NewScheduler(storage)
	if opts.Clock != nil {
		c.scheduler.Clock = opts.Clock
	}
	c.scheduler.Register(&PerceptionSystem{Source: source})
	c.scheduler.Register(&PhaseSystem{})
	c.scheduler.Register(&MouthSystem{})
	c.scheduler.Register(&SpawnSystem{})
	c.scheduler.Register(&FieldSystem{})
	c.scheduler.Register(&ParticleSystem{})

	return c, nil
}

// Tick runs one logic frame on a width x height surface and then delivers the events
// it raised, including a game-over queued during the frame.
func (c *Controller) Tick(width, height float64) {
	if width > 0 && height > 0 {
		view := c.viewport.Get()
		view.Width, view.Height = width, height
	}

	c.scheduler.Once(FrameDelta)
	c.deliver()
}

// Start begins play from Ready.
func (c *Controller) Start() error {
	return c.play(PhaseReady)
}

// Restart begins a new run after game over.
func (c *Controller) Restart() error {
	return c.play(PhaseGameOver)
}

func (c *Controller) play(from Phase) error {
	session := c.session.Get()
	if session.Phase != from {
		return fmt.Errorf("%s to %s: %w", session.Phase, PhasePlaying, ErrInvalidTransition)
	}

	session.reset()
	session.Phase = PhasePlaying
	c.outbox.Get().Publish(Event{Kind: EventPhaseChanged, Phase: PhasePlaying, FatFactor: session.FatFactor})
	c.deliver()
	return nil
}

// Subscribe registers fn to receive every event, in order, after the frame or command
// that raised it.
func (c *Controller) Subscribe(fn func(Event)) {
	c.subscribers = append(c.subscribers, fn)
}

func (c *Controller) deliver() {
	for _, event := range c.outbox.Get().drain() {
		for _, fn := range c.subscribers {
			fn(event)
		}
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.session.Get().Phase
}

// Score returns the current score.
func (c *Controller) Score() int {
	return c.session.Get().Score
}

// FatFactor returns the current horizontal stretch.
func (c *Controller) FatFactor() float64 {
	return c.session.Get().FatFactor
}

// Session returns the live session state. Callers must not mutate it.
func (c *Controller) Session() *Session {
	return c.session.Get()
}

// Tuning returns the active tuning.
func (c *Controller) Tuning() *Tuning {
	return c.tuning.Get()
}

// Storage returns the world the controller runs on, for render systems.
func (c *Controller) Storage() *ecs.Storage {
	return c.storage
}

// Scheduler returns the logic scheduler, for debug statistics.
func (c *Controller) Scheduler() *ecs.Scheduler {
	return c.scheduler
}
