package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/munch/ecs"
)

// History is a fixed-size ring of frame samples.
type History struct {
	samples []float32
	next    int
	filled  bool
}

// NewHistory creates a ring holding size samples.
func NewHistory(size int) *History {
	return &History{samples: make([]float32, size)}
}

// Push records a sample, overwriting the oldest once full.
func (h *History) Push(v float32) {
	h.samples[h.next] = v
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.filled = true
	}
}

// Average returns the mean of the recorded samples, or 0 when empty.
func (h *History) Average() float32 {
	n := h.next
	if h.filled {
		n = len(h.samples)
	}
	if n == 0 {
		return 0
	}

	var sum float32
	for _, v := range h.samples[:n] {
		sum += v
	}
	return sum / float32(n)
}

// Samples returns the raw ring for plotting.
func (h *History) Samples() []float32 {
	return h.samples
}

// NamedScheduler labels a scheduler in the performance window.
type NamedScheduler struct {
	Name      string
	Scheduler *ecs.Scheduler
}

// PerformanceWindow shows frame timing, per-system timing of each scheduler and a
// breakdown of the storage.
type PerformanceWindow struct {
	Storage    *ecs.Storage
	Schedulers []NamedScheduler

	frames *History
	last   time.Time
}

// NewPerformanceWindow creates a window keeping historyFrames frame times.
func NewPerformanceWindow(storage *ecs.Storage, historyFrames int, schedulers ...NamedScheduler) *PerformanceWindow {
	return &PerformanceWindow{
		Storage:    storage,
		Schedulers: schedulers,
		frames:     NewHistory(historyFrames),
	}
}

// Item wraps the window in a component ready to spawn.
func (w *PerformanceWindow) Item() ImguiItem {
	return ImguiItem{Render: w.Render}
}

// Render draws the window. It samples the frame time on every call.
func (w *PerformanceWindow) Render() {
	now := time.Now()
	if !w.last.IsZero() {
		w.frames.Push(float32(now.Sub(w.last).Seconds() * 1000))
	}
	w.last = now

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 300), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(380, 360), imgui.CondOnce)
	if !imgui.BeginV("Performance", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	avg := w.frames.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Frame: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	imgui.PlotLinesFloatPtr("##frametime", &w.frames.Samples()[0], int32(len(w.frames.Samples())))

	for _, named := range w.Schedulers {
		if imgui.TreeNodeStr(named.Name) {
			renderSystemTable(named.Name, named.Scheduler.GetStats())
			imgui.TreePop()
		}
	}

	stats := w.Storage.CollectStats()
	if imgui.TreeNodeStr(fmt.Sprintf("Storage (%d entities)", stats.TotalEntityCount)) {
		for _, arch := range stats.ArchetypeBreakdown {
			imgui.BulletText(fmt.Sprintf("%v: %d", arch.ComponentTypes, arch.EntityCount))
		}
		imgui.Separator()
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func renderSystemTable(id string, stats *ecs.SchedulerStats) {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV(id+"##systems", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Last")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, system := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(system.Name)
		imgui.TableNextColumn()
		imgui.Text(system.LastDuration.String())
		imgui.TableNextColumn()
		imgui.Text(system.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(system.MaxDuration.String())
	}
	imgui.EndTable()
}
