package ecs

import "time"

// UpdateFrame is handed to every system of one Scheduler pass.
type UpdateFrame struct {
	// DeltaTime is the caller-supplied step, in seconds.
	DeltaTime float64
	// Now is the scheduler clock reading taken once at the start of the pass.
	Now time.Time
	// Tick counts passes of the owning scheduler, starting at 1.
	Tick     uint64
	Commands *Commands
	Storage  *Storage
}
