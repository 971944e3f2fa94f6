package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Chomp is a short crunchy bite: a falling square blip over a burst of noise.
func Chomp(rate beep.SampleRate, volume float64) beep.Streamer {
	const d = 90 * time.Millisecond

	blip := Envelope(Tone(WaveSquare, 520, 180, d, rate), d, 5*time.Millisecond, 60*time.Millisecond, rate)
	crunch := Envelope(Tone(WaveNoise, 1, 1, d, rate), d, time.Millisecond, 80*time.Millisecond, rate)
	return gain(beep.Mix(gain(blip, 0.6), gain(crunch, 0.4)), volume)
}

// Fanfare is the rising three-note start cue.
func Fanfare(rate beep.SampleRate, volume float64) beep.Streamer {
	const d = 110 * time.Millisecond

	note := func(freq float64) beep.Streamer {
		return Envelope(Tone(WaveSine, freq, freq, d, rate), d, 5*time.Millisecond, 40*time.Millisecond, rate)
	}
	return gain(beep.Seq(note(523.25), note(659.25), note(783.99)), volume)
}

// Burp is the game-over sound: a long, sagging sawtooth with a low rumble.
func Burp(rate beep.SampleRate, volume float64) beep.Streamer {
	const d = 700 * time.Millisecond

	body := Envelope(Tone(WaveSaw, 140, 70, d, rate), d, 40*time.Millisecond, 300*time.Millisecond, rate)
	rumble := Envelope(Tone(WaveSine, 55, 45, d, rate), d, 20*time.Millisecond, 400*time.Millisecond, rate)
	return gain(beep.Mix(gain(body, 0.5), gain(rumble, 0.5)), volume)
}
