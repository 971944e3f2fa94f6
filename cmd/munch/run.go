package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/munch/audio"
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/ecs/debugui"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/perception"
	"github.com/plus3/munch/render"
)

const qrSize = 240

// run wires the bridge, controller, renderer and audio together and blocks in the
// ebiten loop until the window closes.
func run(ctx context.Context, cfg *Config) error {
	tuning := game.DefaultTuning()
	if cfg.tuning != "" {
		loaded, err := game.LoadTuning(cfg.tuning)
		if err != nil {
			return err
		}
		tuning = loaded
		logf(cfg, "TUNING: Loaded %s", cfg.tuning)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := perception.NewFrameStore()
	options := perception.DefaultOptions()
	options.SendFrames = cfg.camera < 0

	bridge := perception.NewBridge(perception.BridgeConfig{
		Bind:    cfg.bind,
		Port:    cfg.port,
		Version: releaseVersion,
		Options: options,
		Frames:  frames,
		Logf:    func(format string, args ...any) { logf(cfg, format, args...) },
	})

	adapter := perception.NewAdapter()
	adapter.Attach(bridge, func(err error) {
		logf(cfg, "PERCEPTION: %v", err)
	})

	if err := bridge.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := bridge.Stop(); err != nil {
			logf(cfg, "BRIDGE: Stop: %v", err)
		}
	}()

	if cfg.camera >= 0 {
		camera := perception.NewCamera(cfg.camera, frames, func(format string, args ...any) { logf(cfg, format, args...) })
		if err := camera.Start(ctx); err != nil {
			log.Printf("Camera unavailable, falling back to detector frames: %v", err)
		} else {
			defer camera.Stop()
		}
	}

	url := bridge.URL()
	log.Printf("munch v%s: open %s to start the face detector", releaseVersion, url)

	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	debugui.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	controller, err := game.NewController(storage, adapter, game.Options{
		Tuning: &tuning,
		Width:  float64(cfg.width),
		Height: float64(cfg.height),
	})
	if err != nil {
		return err
	}
	controller.Subscribe(func(event game.Event) {
		logf(cfg, "GAME: %s phase=%s score=%d fat=%.2f", event.Kind, event.Phase, event.Score, event.FatFactor)
	})

	qr, err := perception.QRImage(url, qrSize)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(controller, render.Options{
		Frames:      frames,
		DetectorURL: url,
		QR:          qr,
	})
	if err != nil {
		return err
	}

	player := audio.NewPlayer(cfg.volume)
	player.SetMuted(cfg.mute)
	if err := player.Init(); err != nil {
		log.Printf("Sound disabled: %v", err)
	} else {
		defer player.Close()
	}
	controller.Subscribe(player.Handle)

	g := &Game{
		cfg:        cfg,
		controller: controller,
		renderer:   renderer,
		player:     player,
	}

	if cfg.debug {
		g.enableDebug(storage, bridge, adapter)
	} else {
		ebiten.SetWindowSize(cfg.width, cfg.height)
		ebiten.SetWindowTitle("munch")
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.fullscreen)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}
	return nil
}
