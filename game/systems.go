package game

import (
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/geom"
)

// fatEpsilon absorbs float drift when comparing the fat factor with its ceiling, so
// twenty 0.05 steps from 1.0 reach 2.0.
const fatEpsilon = 1e-9

var centre = geom.Point{X: 0.5, Y: 0.5}

// LandmarkSource supplies the most recent landmark set. ok is false when there is no
// face.
type LandmarkSource interface {
	Current() (landmarks geom.Landmarks, ok bool)
}

// PerceptionSystem copies the source's latest landmark set into the Perception
// singleton. It is the only reader of the source during a frame.
type PerceptionSystem struct {
	Source     LandmarkSource
	Perception ecs.Singleton[Perception]
}

func (s *PerceptionSystem) Execute(frame *ecs.UpdateFrame) {
	perception := s.Perception.Get()
	perception.Landmarks = nil
	if s.Source == nil {
		return
	}
	if landmarks, ok := s.Source.Current(); ok && landmarks.Valid() {
		perception.Landmarks = landmarks
		perception.Acquired = true
	}
}

// PhaseSystem moves Loading to Ready once a face has been acquired.
type PhaseSystem struct {
	Session    ecs.Singleton[Session]
	Perception ecs.Singleton[Perception]
	Outbox     ecs.Singleton[Outbox]
}

func (s *PhaseSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()
	if session.Phase == PhaseLoading && s.Perception.Get().Acquired {
		session.Phase = PhaseReady
		s.Outbox.Get().Publish(Event{Kind: EventPhaseChanged, Phase: PhaseReady})
	}
}

// MouthSystem derives the mouth state for the frame. Without a face the nose falls
// back to the canvas centre and the mouth is closed.
type MouthSystem struct {
	Perception ecs.Singleton[Perception]
	Mouth      ecs.Singleton[Mouth]
	Tuning     ecs.Singleton[Tuning]
}

func (s *MouthSystem) Execute(frame *ecs.UpdateFrame) {
	mouth := s.Mouth.Get()
	landmarks := s.Perception.Get().Landmarks

	if landmarks == nil {
		*mouth = Mouth{Nose: centre}
		return
	}

	mouth.Signal = true
	mouth.Nose = landmarks.Nose()
	mouth.Center = landmarks.MouthCenter()
	mouth.Ratio = landmarks.MouthRatio()
	mouth.Open = mouth.Ratio > s.Tuning.Get().MouthOpenThreshold
}

// SpawnSystem drops a new item whenever more than the spawn interval has passed since
// the previous one. Items are spawned straight into storage so the field advances them
// in the same frame.
type SpawnSystem struct {
	Session ecs.Singleton[Session]
	Tuning  ecs.Singleton[Tuning]
	Random  ecs.Singleton[Random]
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()
	if session.Phase != PhasePlaying {
		return
	}

	tuning := s.Tuning.Get()
	if !session.LastSpawn.IsZero() && frame.Now.Sub(session.LastSpawn) <= tuning.SpawnInterval {
		return
	}

	rng := s.Random.Get()
	session.Spawned++
	session.LastSpawn = frame.Now
	frame.Storage.Spawn(Item{
		Serial: session.Spawned,
		X:      rng.Between(tuning.SpawnX.Min, tuning.SpawnX.Max),
		Y:      tuning.SpawnY,
		Speed:  rng.Between(tuning.FallSpeed.Min, tuning.FallSpeed.Max),
		Glyph:  tuning.Glyphs[rng.IntN(len(tuning.Glyphs))],
		Kind:   ItemFood,
		Value:  tuning.ItemValue,
	})
}

// FieldSystem advances every item, credits hits against the distorted mouth and
// removes items that fell out of view. The mouth target is computed once per frame
// from the fat factor at the start of the frame, so hits earlier in the frame do not
// move it.
type FieldSystem struct {
	Items ecs.Query[struct {
		ecs.EntityId
		*Item
	}]
	Session  ecs.Singleton[Session]
	Viewport ecs.Singleton[Viewport]
	Mouth    ecs.Singleton[Mouth]
	Tuning   ecs.Singleton[Tuning]
	Random   ecs.Singleton[Random]
	Palette  ecs.Singleton[Palette]
	Outbox   ecs.Singleton[Outbox]
}

func (s *FieldSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()
	if session.Phase != PhasePlaying {
		return
	}

	tuning := s.Tuning.Get()
	view := s.Viewport.Get()
	mouth := s.Mouth.Get()
	open := mouth.Signal && mouth.Open
	target := mouth.Distorted(session.FatFactor).ToScreen(view.Width, view.Height)

	for entry := range s.Items.Iter() {
		item := entry.Item
		if item.Eaten {
			continue
		}

		item.Y += item.Speed
		pos := item.Position().ToScreen(view.Width, view.Height)

		if open && geom.Distance(pos, target) < tuning.HitRadius {
			item.Eaten = true
			frame.Commands.Delete(entry.EntityId)
			s.credit(frame, session, tuning, item, pos)
			continue
		}

		if item.Y > tuning.RemoveBelow {
			frame.Commands.Delete(entry.EntityId)
		}
	}
}

func (s *FieldSystem) credit(frame *ecs.UpdateFrame, session *Session, tuning *Tuning, item *Item, at geom.Point) {
	session.Score += item.Value
	session.Eaten++
	session.FatFactor = min(session.FatFactor+tuning.FatStep, tuning.FatMax)

	SpawnBurst(frame.Commands, s.Random.Get(), tuning, s.Palette.Get().Colors, at)

	outbox := s.Outbox.Get()
	outbox.Publish(Event{
		Kind:      EventItemEaten,
		Phase:     session.Phase,
		Score:     session.Score,
		FatFactor: session.FatFactor,
		At:        at,
	})

	if session.FatFactor >= tuning.FatMax-fatEpsilon && !session.GameOverScheduled {
		session.GameOverScheduled = true
		frame.Commands.Defer(func() {
			endSession(session, outbox)
		})
	}
}

// endSession runs from the command flush, after every system of the frame.
func endSession(session *Session, outbox *Outbox) {
	if session.Phase != PhasePlaying {
		return
	}
	session.Phase = PhaseGameOver
	outbox.Publish(Event{Kind: EventPhaseChanged, Phase: PhaseGameOver, Score: session.Score, FatFactor: session.FatFactor})
	outbox.Publish(Event{Kind: EventGameOver, Phase: PhaseGameOver, Score: session.Score, FatFactor: session.FatFactor})
}
