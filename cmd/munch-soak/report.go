package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/munch/ecs"
)

// Report summarises one soak run.
type Report struct {
	Frames    uint64
	DropEvery uint64
	Seed      uint64

	Runs          []int
	Spawned       uint64
	Eaten         int
	PeakEntities  int
	TotalTime     time.Duration
	UpdateTime    Stats
	Systems       []ecs.SystemStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// Stats is the distribution of per-frame update times.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

// Finalize computes Min, Max and Avg from Samples.
func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# munch soak report

## Setup
- **Frames:** {{.Frames}}
- **Seed:** {{.Seed}}
- **Face dropped every:** {{if .DropEvery}}{{.DropEvery}} frames{{else}}never{{end}}

## Gameplay
- **Finished runs:** {{len .Runs}}{{range $i, $score := .Runs}}
  - run {{inc $i}}: {{$score}} points{{end}}
- **Items spawned:** {{.Spawned}}
- **Items eaten:** {{.Eaten}}
- **Peak entities:** {{.PeakEntities}}

## Frame time
- **Total:** {{.TotalTime}}
- **Avg:** {{.UpdateTime.Avg}}
- **Min:** {{.UpdateTime.Min}}
- **Max:** {{.UpdateTime.Max}}

## Systems
{{range .Systems}}- {{.Name}}: avg {{.AvgDuration}}, max {{.MaxDuration}} over {{.ExecutionCount}} runs
{{end}}
## Memory
- Heap Alloc: {{.MemStatsStart.HeapAlloc | mb}} MB -> {{.MemStatsEnd.HeapAlloc | mb}} MB
- Total Alloc delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc | mb}} MB
- Num GC delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

// Generate writes the report as markdown.
func (r *Report) Generate(w io.Writer) error {
	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"inc": func(i int) int {
			return i + 1
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
