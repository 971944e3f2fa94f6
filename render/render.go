// Package render draws a game session onto an ebiten surface.
//
// Drawing runs as its own ecs.Scheduler over the controller's storage, so render
// systems read the same Session, Mouth and Item state the logic systems wrote during
// the preceding Update.
package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/game"
)

// Screen is the surface the render systems draw into for the current frame.
type Screen struct {
	Image *ebiten.Image
}

// FrameSource supplies the latest camera frame and a sequence number that changes
// whenever the frame does.
type FrameSource interface {
	Frame() (image.Image, uint64)
}

// Options configures a Renderer.
type Options struct {
	Frames FrameSource
	// DetectorURL is shown on the loading overlay together with QR.
	DetectorURL string
	QR          image.Image
}

// Renderer owns the render scheduler.
type Renderer struct {
	scheduler *ecs.Scheduler
	screen    *ecs.Singleton[Screen]
}

// NewRenderer registers the render systems against the controller's storage.
func NewRenderer(controller *game.Controller, opts Options) (*Renderer, error) {
	faces, err := loadFonts()
	if err != nil {
		return nil, err
	}

	storage := controller.Storage()
	r := &Renderer{
		scheduler: ecs.NewScheduler(storage),
		screen:    ecs.NewSingleton[Screen](storage),
	}

	r.scheduler.Register(&VideoSystem{Source: opts.Frames})
	r.scheduler.Register(&ItemSystem{fonts: faces})
	r.scheduler.Register(&MouthMarkerSystem{})
	r.scheduler.Register(&ParticleSystem{})
	r.scheduler.Register(&HUDSystem{
		fonts: faces,
		url:   opts.DetectorURL,
		qr:    opts.QR,
	})
	return r, nil
}

// Draw renders one frame onto screen.
func (r *Renderer) Draw(screen *ebiten.Image) {
	r.screen.Get().Image = screen
	r.scheduler.Once(0)
	r.screen.Get().Image = nil
}

// Scheduler exposes the render scheduler for debug overlays.
func (r *Renderer) Scheduler() *ecs.Scheduler {
	return r.scheduler
}
