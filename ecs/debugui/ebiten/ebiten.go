// Package ebiten hosts the Dear ImGui backend for ebiten games.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/munch/ecs"
)

// ImguiBackend wraps the ebiten Dear ImGui backend so it can live in storage as a
// singleton.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend, opens its window and stores it in storage.
// ImGui's ini file is disabled so window layout never leaks between runs.
func NewImguiBackend(storage *ecs.Storage, title string, width, height int) *ecs.Singleton[ImguiBackend] {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	return ecs.NewSingleton(storage, ImguiBackend{EbitenBackend: backend})
}
