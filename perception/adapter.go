package perception

import (
	"fmt"
	"sync/atomic"

	"github.com/plus3/munch/geom"
)

// Adapter holds the current landmark set. Deliver may be called from any goroutine and
// never blocks; the newest delivery always wins.
type Adapter struct {
	current    atomic.Pointer[geom.Landmarks]
	acquired   atomic.Bool
	deliveries atomic.Uint64
	dropped    atomic.Uint64
}

// NewAdapter returns an Adapter in the no-signal state.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Deliver replaces the current landmark set. A nil or empty set clears it to
// no-signal. A set too short for the game also clears it, and is reported as
// ErrShortLandmarks.
func (a *Adapter) Deliver(landmarks geom.Landmarks) error {
	a.deliveries.Add(1)

	if len(landmarks) == 0 {
		a.current.Store(nil)
		return nil
	}

	if err := landmarks.Check(); err != nil {
		a.dropped.Add(1)
		a.current.Store(nil)
		return fmt.Errorf("%w: %w", ErrShortLandmarks, err)
	}

	a.current.Store(&landmarks)
	a.acquired.Store(true)
	return nil
}

// Current returns the newest landmark set, or false when there is no face.
func (a *Adapter) Current() (geom.Landmarks, bool) {
	p := a.current.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Acquired reports whether a face has ever been delivered.
func (a *Adapter) Acquired() bool {
	return a.acquired.Load()
}

// Deliveries returns the number of Deliver calls.
func (a *Adapter) Deliveries() uint64 {
	return a.deliveries.Load()
}

// Dropped returns the number of rejected landmark sets.
func (a *Adapter) Dropped() uint64 {
	return a.dropped.Load()
}

// Attach subscribes the adapter to a detector. Rejected sets are passed to onError
// when it is not nil.
func (a *Adapter) Attach(d Detector, onError func(error)) {
	d.Subscribe(func(delivery Delivery) {
		if err := a.Deliver(delivery.Landmarks); err != nil && onError != nil {
			onError(err)
		}
	})
}
