package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/ecs/debugui"
	debugui_ebiten "github.com/plus3/munch/ecs/debugui/ebiten"
	"github.com/plus3/munch/game"
	"github.com/plus3/munch/perception"
)

// enableDebug opens the window through the ImGui backend and spawns the session and
// performance windows. F1 hides them.
func (g *Game) enableDebug(storage *ecs.Storage, bridge *perception.Bridge, adapter *perception.Adapter) {
	g.backend = debugui_ebiten.NewImguiBackend(storage, "munch (debug)", g.cfg.width, g.cfg.height)
	g.input = ecs.NewSingleton[debugui.ImguiInputState](storage)

	storage.Spawn(debugui.ImguiItem{Render: sessionWindow(g.controller, bridge, adapter)})
	storage.Spawn(debugui.NewPerformanceWindow(storage, 120,
		debugui.NamedScheduler{Name: "Logic", Scheduler: g.controller.Scheduler()},
		debugui.NamedScheduler{Name: "Render", Scheduler: g.renderer.Scheduler()},
	).Item())

	g.debug = ecs.NewScheduler(storage)
	g.debug.Register(&debugui.ImguiSystem{})
}

// sessionWindow shows the live session, the perception feed and the active tuning.
func sessionWindow(controller *game.Controller, bridge *perception.Bridge, adapter *perception.Adapter) func() {
	storage := controller.Storage()

	return func() {
		imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
		imgui.SetNextWindowSizeV(imgui.NewVec2(320, 280), imgui.CondOnce)
		if !imgui.BeginV("Session", nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}

		session := controller.Session()
		imgui.Text(fmt.Sprintf("Phase: %s", session.Phase))
		imgui.Text(fmt.Sprintf("Score: %d (%d eaten, %d spawned)", session.Score, session.Eaten, session.Spawned))
		imgui.Text(fmt.Sprintf("Fat factor: %.2f", session.FatFactor))

		switch session.Phase {
		case game.PhaseReady:
			if imgui.Button("Start") {
				_ = controller.Start()
			}
		case game.PhaseGameOver:
			if imgui.Button("Restart") {
				_ = controller.Restart()
			}
		}

		imgui.Separator()
		var mouth *game.Mouth
		if storage.ReadSingleton(&mouth) {
			imgui.Text(fmt.Sprintf("Signal: %v  Open: %v", mouth.Signal, mouth.Open))
			imgui.Text(fmt.Sprintf("Mouth ratio: %.3f", mouth.Ratio))
			imgui.Text(fmt.Sprintf("Nose: (%.3f, %.3f)", mouth.Nose.X, mouth.Nose.Y))
		}
		imgui.Text(fmt.Sprintf("Deliveries: %d (%d dropped)", adapter.Deliveries(), adapter.Dropped()))
		imgui.Text(fmt.Sprintf("Detector pages: %d", bridge.Sessions()))
		imgui.Text(bridge.URL())

		if imgui.TreeNodeStr("Tuning") {
			tuning := controller.Tuning()
			imgui.Text(fmt.Sprintf("Mouth threshold: %.3f", tuning.MouthOpenThreshold))
			imgui.Text(fmt.Sprintf("Spawn every: %s", tuning.SpawnInterval))
			imgui.Text(fmt.Sprintf("Hit radius: %.0f px", tuning.HitRadius))
			imgui.Text(fmt.Sprintf("Fat: +%.2f up to %.2f", tuning.FatStep, tuning.FatMax))
			imgui.TreePop()
		}

		imgui.End()
	}
}
