package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/geom"
)

const (
	particleRadius  = 5
	markerThickness = 3
)

var (
	backdrop    = color.RGBA{18, 18, 26, 255}
	markerColor = color.RGBA{0, 255, 0, 255}
	shade       = color.RGBA{0, 0, 0, 150}
	white       = color.RGBA{255, 255, 255, 255}
	gold        = color.RGBA{255, 215, 0, 255}
)

// VideoSystem draws the camera frame so it covers the surface, stretched
// horizontally about the nose by the current fat factor.
type VideoSystem struct {
	Source FrameSource

	Screen   ecs.Singleton[Screen]
	Viewport ecs.Singleton[game.Viewport]
	Session  ecs.Singleton[game.Session]
	Mouth    ecs.Singleton[game.Mouth]

	image *ebiten.Image
	seq   uint64
}

func (s *VideoSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	screen.Fill(backdrop)

	if s.Source == nil {
		return
	}
	if img, seq := s.Source.Frame(); img != nil && (s.image == nil || seq != s.seq) {
		s.upload(img, seq)
	}
	if s.image == nil {
		return
	}

	view := s.Viewport.Get()
	bounds := s.image.Bounds()
	op := &ebiten.DrawImageOptions{GeoM: videoTransform(
		float64(bounds.Dx()), float64(bounds.Dy()),
		view.Width, view.Height,
		s.Mouth.Get().Nose.X*view.Width,
		s.Session.Get().FatFactor,
	)}
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(s.image, op)
}

func (s *VideoSystem) upload(img image.Image, seq uint64) {
	if s.image != nil && s.image.Bounds().Size() == img.Bounds().Size() {
		if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
			s.image.WritePixels(rgba.Pix)
			s.seq = seq
			return
		}
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImageFromImage(img)
	s.seq = seq
}

// videoTransform maps frame pixels to surface pixels: a cover fit followed by a
// horizontal scale of fat about noseX.
func videoTransform(frameW, frameH, width, height, noseX, fat float64) ebiten.GeoM {
	scale, offX, offY := geom.Cover(frameW, frameH, width, height)

	var m ebiten.GeoM
	m.Scale(scale, scale)
	m.Translate(offX, offY)
	m.Translate(-noseX, 0)
	m.Scale(fat, 1)
	m.Translate(noseX, 0)
	return m
}

// ItemSystem draws falling items at their undistorted positions while playing.
type ItemSystem struct {
	Items    ecs.Query[struct{ *game.Item }]
	Screen   ecs.Singleton[Screen]
	Viewport ecs.Singleton[game.Viewport]
	Session  ecs.Singleton[game.Session]

	fonts *fonts
}

func (s *ItemSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Session.Get().Phase != game.PhasePlaying {
		return
	}

	screen := s.Screen.Get().Image
	view := s.Viewport.Get()
	for entry := range s.Items.Iter() {
		if entry.Item.Eaten {
			continue
		}
		at := entry.Item.Position().ToScreen(view.Width, view.Height)
		drawGlyph(screen, s.fonts, entry.Item.Glyph, at)
	}
}

// MouthMarkerSystem rings the mouth, where the player sees it, while it is open.
type MouthMarkerSystem struct {
	Screen   ecs.Singleton[Screen]
	Viewport ecs.Singleton[game.Viewport]
	Session  ecs.Singleton[game.Session]
	Mouth    ecs.Singleton[game.Mouth]
	Tuning   ecs.Singleton[game.Tuning]
}

func (s *MouthMarkerSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()
	mouth := s.Mouth.Get()
	if session.Phase != game.PhasePlaying || !mouth.Signal || !mouth.Open {
		return
	}

	view := s.Viewport.Get()
	at := mouth.Distorted(session.FatFactor).ToScreen(view.Width, view.Height)
	vector.StrokeCircle(s.Screen.Get().Image, float32(at.X), float32(at.Y),
		float32(s.Tuning.Get().MouthMarkerRadius), markerThickness, markerColor, true)
}

// ParticleSystem draws confetti faded by its remaining life, in every phase.
type ParticleSystem struct {
	Particles ecs.Query[struct{ *game.Particle }]
	Screen    ecs.Singleton[Screen]
}

func (s *ParticleSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	for entry := range s.Particles.Iter() {
		p := entry.Particle
		vector.DrawFilledCircle(screen, float32(p.Pos.X), float32(p.Pos.Y), particleRadius, fade(p.Color, p.Life), true)
	}
}

// fade scales a straight-alpha colour by alpha and returns it premultiplied.
func fade(c color.RGBA, alpha float64) color.RGBA {
	alpha = min(max(alpha, 0), 1)
	scale := func(v uint8) uint8 { return uint8(float64(v)*alpha + 0.5) }
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), scale(c.A)}
}

// HUDSystem draws the score badge, the fat meter and the per-phase overlays.
type HUDSystem struct {
	Screen     ecs.Singleton[Screen]
	Viewport   ecs.Singleton[game.Viewport]
	Session    ecs.Singleton[game.Session]
	Perception ecs.Singleton[game.Perception]
	Tuning     ecs.Singleton[game.Tuning]

	fonts   *fonts
	url     string
	qr      image.Image
	qrImage *ebiten.Image
}

func (s *HUDSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	view := s.Viewport.Get()
	session := s.Session.Get()
	cx := view.Width / 2

	switch session.Phase {
	case game.PhaseLoading:
		dim(screen, view)
		drawText(screen, "Looking for a face...", s.fonts.title, cx, view.Height*0.12, white)
		hint := "Allow camera access, or scan the code with a phone"
		if s.url != "" {
			hint += "\n" + s.url
		}
		drawText(screen, hint, s.fonts.body, cx, view.Height*0.12+70, white)
		s.drawQR(screen, cx, view.Height*0.12+140)

	case game.PhaseReady:
		dim(screen, view)
		drawText(screen, "Face found!", s.fonts.title, cx, view.Height*0.35, gold)
		drawText(screen, "Open wide to eat the falling food.\nPress SPACE to start", s.fonts.body, cx, view.Height*0.35+70, white)

	case game.PhasePlaying:
		s.drawBadge(screen, session)
		if !s.Perception.Get().Landmarks.Valid() {
			drawText(screen, "Face lost", s.fonts.body, cx, view.Height-48, white)
		}

	case game.PhaseGameOver:
		dim(screen, view)
		drawText(screen, "TOO FULL!", s.fonts.title, cx, view.Height*0.3, gold)
		summary := fmt.Sprintf("Final score: %d\nItems eaten: %d\nPress SPACE to play again", session.Score, session.Eaten)
		drawText(screen, summary, s.fonts.body, cx, view.Height*0.3+70, white)
	}
}

func (s *HUDSystem) drawBadge(screen *ebiten.Image, session *game.Session) {
	vector.DrawFilledRect(screen, 16, 16, 220, 74, shade, false)
	drawText(screen, fmt.Sprintf("Score %d", session.Score), s.fonts.score, 126, 22, white)

	tuning := s.Tuning.Get()
	fill := (session.FatFactor - 1) / (tuning.FatMax - 1)
	fill = min(max(fill, 0), 1)
	vector.StrokeRect(screen, 28, 64, 196, 14, 2, white, false)
	vector.DrawFilledRect(screen, 30, 66, float32(192*fill), 10, gold, false)
}

func (s *HUDSystem) drawQR(screen *ebiten.Image, cx, top float64) {
	if s.qr == nil {
		return
	}
	if s.qrImage == nil {
		s.qrImage = ebiten.NewImageFromImage(s.qr)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(cx-float64(s.qrImage.Bounds().Dx())/2, top)
	screen.DrawImage(s.qrImage, op)
}

func dim(screen *ebiten.Image, view *game.Viewport) {
	vector.DrawFilledRect(screen, 0, 0, float32(view.Width), float32(view.Height), shade, false)
}
