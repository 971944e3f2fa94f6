//go:build gocv

package perception

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Camera captures frames from a local device into a FrameStore. It provides video
// only; landmarks still come from a Detector.
type Camera struct {
	device int
	frames *FrameStore
	logf   func(string, ...any)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCamera prepares capture from device index device.
func NewCamera(device int, frames *FrameStore, logf func(string, ...any)) *Camera {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Camera{device: device, frames: frames, logf: logf}
}

// Start opens the device and captures until ctx is done or Stop is called.
func (c *Camera) Start(ctx context.Context) error {
	webcam, err := gocv.VideoCaptureDevice(c.device)
	if err != nil {
		return fmt.Errorf("%w: device %d: %w", ErrNoCamera, c.device, err)
	}
	if !webcam.IsOpened() {
		webcam.Close()
		return fmt.Errorf("%w: device %d did not open", ErrNoCamera, c.device)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer webcam.Close()

		img := gocv.NewMat()
		defer img.Close()

		for ctx.Err() == nil {
			if ok := webcam.Read(&img); !ok || img.Empty() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			frame, err := img.ToImage()
			if err != nil {
				c.logf("CAMERA: Convert frame: %v", err)
				continue
			}
			c.frames.Put(frame)
		}
	}()

	return nil
}

// Stop ends capture and releases the device.
func (c *Camera) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
