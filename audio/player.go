// Package audio plays synthesised sound effects for game events.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/munch/game"
)

// SampleRate is the output rate of every effect.
const SampleRate = beep.SampleRate(44100)

// Player mixes effects into the speaker. Until Init succeeds, and while muted, Handle
// does nothing.
type Player struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	ready  bool
	muted  bool
	volume float64
}

// NewPlayer creates a player at the given linear volume.
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Init opens the speaker. It is safe to call more than once.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.ready = true
	return nil
}

// Close silences anything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.ready = false
}

// SetMuted toggles output without closing the speaker.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// Muted reports whether output is muted.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Handle plays the effect for event, if it has one. It is meant to be passed to
// game.Controller.Subscribe.
func (p *Player) Handle(event game.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready || p.muted {
		return
	}
	s := Effect(event, p.volume)
	if s == nil {
		return
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Effect returns a fresh streamer for event, or nil when the event is silent.
func Effect(event game.Event, volume float64) beep.Streamer {
	switch event.Kind {
	case game.EventItemEaten:
		return Chomp(SampleRate, volume)
	case game.EventGameOver:
		return Burp(SampleRate, volume)
	case game.EventPhaseChanged:
		if event.Phase == game.PhasePlaying {
			return Fanfare(SampleRate, volume)
		}
	}
	return nil
}
