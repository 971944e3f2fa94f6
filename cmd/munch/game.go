package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/munch/audio"
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/ecs/debugui"
	debugui_ebiten "github.com/plus3/munch/ecs/debugui/ebiten"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/render"
)

// Game adapts the controller and renderer to ebiten.
type Game struct {
	cfg        *Config
	controller *game.Controller
	renderer   *render.Renderer
	player     *audio.Player

	width, height int

	debug   *ecs.Scheduler
	backend *ecs.Singleton[debugui_ebiten.ImguiBackend]
	input   *ecs.Singleton[debugui.ImguiInputState]
}

func (g *Game) Update() error {
	if g.keyPressed(ebiten.KeyEscape) || g.keyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	switch {
	case g.keyPressed(ebiten.KeySpace), g.keyPressed(ebiten.KeyEnter):
		g.advance()
	case g.keyPressed(ebiten.KeyF):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case g.keyPressed(ebiten.KeyM):
		g.player.SetMuted(!g.player.Muted())
	case g.keyPressed(ebiten.KeyF1) && g.input != nil:
		g.input.Get().Hidden = !g.input.Get().Hidden
	}

	g.controller.Tick(float64(g.width), float64(g.height))

	if g.debug != nil {
		g.backend.Get().BeginFrame()
		g.debug.Once(game.FrameDelta)
		g.backend.Get().EndFrame()
	}
	return nil
}

// advance starts a run from Ready or restarts one after game over. Elsewhere the key
// does nothing.
func (g *Game) advance() {
	var err error
	switch g.controller.Phase() {
	case game.PhaseReady:
		err = g.controller.Start()
	case game.PhaseGameOver:
		err = g.controller.Restart()
	default:
		return
	}
	if err != nil && !errors.Is(err, game.ErrInvalidTransition) {
		logf(g.cfg, "GAME: %v", err)
	}
}

// keyPressed reports a fresh key press that no debug window is consuming.
func (g *Game) keyPressed(key ebiten.Key) bool {
	if g.input != nil && g.input.Get().WantCaptureKeyboard {
		return false
	}
	return inpututil.IsKeyJustPressed(key)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)

	if g.debug != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f  FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS()), g.width-140, g.height-20)
		g.backend.Get().Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	if g.backend != nil {
		g.backend.Get().Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
