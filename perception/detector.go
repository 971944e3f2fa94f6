// Package perception connects external face-landmark detectors to the game. Detectors
// push Deliveries from their own goroutines; the Adapter keeps only the newest one for
// the game loop to read.
package perception

import (
	"context"
	"errors"
	"time"

	"github.com/plus3/munch/geom"
)

var (
	// ErrShortLandmarks is reported for a landmark set missing indices the game reads.
	ErrShortLandmarks = errors.New("landmark set too short")
	// ErrUnknownMessage is reported for a wire message of an unknown type.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrNoCamera is returned when no local camera can be opened.
	ErrNoCamera = errors.New("no camera available")
)

// Delivery is one detector result. Landmarks is nil when no face was found.
type Delivery struct {
	Landmarks geom.Landmarks
	// Width and Height are the dimensions of the analysed frame, if known.
	Width, Height int
	// Frame is an optional JPEG of the analysed frame.
	Frame []byte
	At    time.Time
}

// Detector produces Deliveries until stopped. Subscribers are called from the
// detector's goroutines and must not block.
type Detector interface {
	Start(ctx context.Context) error
	Stop() error
	Subscribe(fn func(Delivery))
}

// Options are forwarded to the detector implementation.
type Options struct {
	MaxFaces               int     `json:"maxNumFaces"`
	RefineLandmarks        bool    `json:"refineLandmarks"`
	MinDetectionConfidence float64 `json:"minDetectionConfidence"`
	MinTrackingConfidence  float64 `json:"minTrackingConfidence"`
	Width                  int     `json:"width"`
	Height                 int     `json:"height"`
	// SendFrames asks the detector to stream the analysed video frames back.
	SendFrames bool `json:"sendFrames"`
}

// DefaultOptions tracks a single face with refined landmarks on a 1280x720 capture.
func DefaultOptions() Options {
	return Options{
		MaxFaces:               1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		Width:                  1280,
		Height:                 720,
		SendFrames:             true,
	}
}
