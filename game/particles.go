package game

import (
	"image/color"

	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/geom"
)

// lifeEpsilon lets a particle that decayed by exact steps expire on the last step
// despite float drift.
const lifeEpsilon = 1e-9

// SpawnBurst queues tuning.BurstSize particles at a screen position.
func SpawnBurst(commands *ecs.Commands, rng *Random, tuning *Tuning, palette []color.RGBA, at geom.Point) {
	for range tuning.BurstSize {
		p := Particle{
			Pos: at,
			Vel: geom.Point{
				X: rng.Between(tuning.ParticleVX.Min, tuning.ParticleVX.Max),
				Y: rng.Between(tuning.ParticleVY.Min, tuning.ParticleVY.Max),
			},
			Color: color.RGBA{A: 0xff},
			Life:  1.0,
		}
		if len(palette) > 0 {
			p.Color = palette[rng.IntN(len(palette))]
		}
		commands.Spawn(p)
	}
}

// ParticleSystem integrates confetti every frame in every phase and removes particles
// whose life has run out.
type ParticleSystem struct {
	Particles ecs.Query[struct {
		ecs.EntityId
		*Particle
	}]
	Tuning ecs.Singleton[Tuning]
}

func (s *ParticleSystem) Execute(frame *ecs.UpdateFrame) {
	tuning := s.Tuning.Get()

	for entry := range s.Particles.Iter() {
		p := entry.Particle
		p.Pos = p.Pos.Add(p.Vel)
		p.Vel.Y += tuning.Gravity
		p.Life -= tuning.LifeDecay

		if p.Life <= lifeEpsilon {
			frame.Commands.Delete(entry.EntityId)
		}
	}
}
