package game

import (
	"time"

	"github.com/plus3/munch/geom"
)

//go:generate stringer -type=Phase -trimprefix=Phase
//go:generate stringer -type=EventKind -trimprefix=Event

// Phase is the top-level state of a session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhasePlaying
	PhaseGameOver
)

// Session is the score state of the current run.
type Session struct {
	Phase     Phase
	Score     int
	FatFactor float64

	// GameOverScheduled latches when the fat ceiling is first reached, so the
	// game-over transition is queued at most once per run.
	GameOverScheduled bool

	LastSpawn time.Time
	Spawned   uint64
	Eaten     int
}

func (s *Session) reset() {
	s.Score = 0
	s.FatFactor = 1.0
	s.GameOverScheduled = false
	s.Eaten = 0
}

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width, Height float64
}

// Perception is the landmark set the current frame runs on.
type Perception struct {
	Landmarks geom.Landmarks
	// Acquired is set once a face has been seen and never cleared.
	Acquired bool
}

// Mouth is derived from Perception once at the top of every frame.
type Mouth struct {
	Signal bool
	Open   bool
	Ratio  float64
	Nose   geom.Point
	Center geom.Point
}

// Distorted returns the mouth centre as the player sees it on the stretched video.
func (m *Mouth) Distorted(fatFactor float64) geom.Point {
	return geom.DistortPoint(m.Center, m.Nose, fatFactor)
}

// EventKind identifies an outward game event.
type EventKind int

const (
	EventPhaseChanged EventKind = iota
	EventItemEaten
	EventGameOver
)

// Event is delivered to Controller subscribers after the frame that raised it.
type Event struct {
	Kind      EventKind
	Phase     Phase
	Score     int
	FatFactor float64
	// At is the screen position of the eaten item for EventItemEaten.
	At geom.Point
}

// Outbox collects events raised during a frame until the Controller drains them.
type Outbox struct {
	Events []Event
}

// Publish queues an event.
func (o *Outbox) Publish(event Event) {
	o.Events = append(o.Events, event)
}

func (o *Outbox) drain() []Event {
	events := o.Events
	o.Events = nil
	return events
}
