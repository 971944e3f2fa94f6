//go:build !gocv

package perception

import (
	"context"
	"fmt"
)

// Camera is unavailable in builds without the gocv tag.
type Camera struct {
	device int
}

// NewCamera returns a camera whose Start always fails with ErrNoCamera.
func NewCamera(device int, frames *FrameStore, logf func(string, ...any)) *Camera {
	return &Camera{device: device}
}

func (c *Camera) Start(ctx context.Context) error {
	return fmt.Errorf("%w: device %d: built without gocv support", ErrNoCamera, c.device)
}

func (c *Camera) Stop() error {
	return nil
}
