// Package debugui renders Dear ImGui debug windows from ECS entities. Every entity
// carrying an ImguiItem gets its Render function called once per frame, after the
// scheduler pass, inside the caller's BeginFrame/EndFrame pair.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/munch/ecs"
)

// ImguiItem is a component holding one window's render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a singleton mirroring ImGui's input capture, so game input
// handling can ignore keys and clicks meant for a debug window.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
	// Hidden suppresses every window without despawning them.
	Hidden bool
}

// ImguiSystem defers the render function of every ImguiItem to the command flush.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	io := imgui.CurrentIO()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()

	if state.Hidden {
		return
	}
	for item := range i.Items.Iter() {
		frame.Commands.Defer(item.Render)
	}
}

// RegisterComponents registers the package's component types.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}
