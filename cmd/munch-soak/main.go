// Command munch-soak drives the game headless with a synthetic player and reports
// frame timing and gameplay totals.
package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/munch/ecs"
	"github.com/plus3/munch/game"
	"github.com/spf13/cobra"
)

const (
	width  = 1280
	height = 720
)

type options struct {
	frames    uint64
	dropEvery uint64
	seed      uint64
}

func main() {
	log.SetFlags(0)
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "munch-soak",
		Short:         "Play munch headless with a synthetic face and report timings.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := soak(opts)
			if err != nil {
				return err
			}
			return report.Generate(os.Stdout)
		},
	}

	fs := cmd.Flags()
	fs.Uint64Var(&opts.frames, "frames", 60*60*10, "number of logic frames to run")
	fs.Uint64Var(&opts.dropEvery, "drop-every", 0, "lose the face for one frame every n frames, 0 never")
	fs.Uint64Var(&opts.seed, "seed", 1, "random seed for spawns and particles")

	cobra.CheckErr(cmd.Execute())
}

// soak plays opts.frames frames on a fixed 60 Hz clock, starting and restarting runs
// as soon as the phase allows.
func soak(opts *options) (*Report, error) {
	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	now := time.Unix(0, 0)
	bot := NewBot(storage, opts.dropEvery)
	controller, err := game.NewController(storage, bot, game.Options{
		Clock:  func() time.Time { return now },
		Rand:   rand.New(rand.NewPCG(opts.seed, opts.seed)),
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	report := &Report{
		Frames:    opts.frames,
		DropEvery: opts.dropEvery,
		Seed:      opts.seed,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0, opts.frames),
		},
	}

	controller.Subscribe(func(event game.Event) {
		if event.Kind == game.EventGameOver {
			report.Runs = append(report.Runs, event.Score)
		}
	})

	runtime.ReadMemStats(&report.MemStatsStart)
	start := time.Now()

	for range opts.frames {
		now = now.Add(time.Second / 60)

		switch controller.Phase() {
		case game.PhaseReady:
			err = controller.Start()
		case game.PhaseGameOver:
			report.Eaten += controller.Session().Eaten
			err = controller.Restart()
		}
		if err != nil {
			return nil, err
		}

		updateStart := time.Now()
		controller.Tick(width, height)
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

		report.PeakEntities = max(report.PeakEntities, storage.CollectStats().TotalEntityCount)
	}

	report.TotalTime = time.Since(start)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	session := controller.Session()
	report.Spawned = session.Spawned
	if session.Phase != game.PhaseReady {
		report.Eaten += session.Eaten
	}
	report.Systems = controller.Scheduler().GetStats().Systems
	return report, nil
}
