package perception

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sync/atomic"
)

type frameSlot struct {
	img image.Image
	seq uint64
}

// FrameStore holds the newest video frame. Writers and the game loop never block
// each other.
type FrameStore struct {
	slot atomic.Pointer[frameSlot]
	seq  atomic.Uint64
}

// NewFrameStore returns an empty store.
func NewFrameStore() *FrameStore {
	return &FrameStore{}
}

// Put stores an already decoded frame.
func (s *FrameStore) Put(img image.Image) {
	s.slot.Store(&frameSlot{img: img, seq: s.seq.Add(1)})
}

// PutJPEG decodes and stores a JPEG frame.
func (s *FrameStore) PutJPEG(data []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	s.Put(img)
	return nil
}

// Frame returns the newest frame and its sequence number, which increases with every
// Put. It returns nil and 0 before the first frame.
func (s *FrameStore) Frame() (image.Image, uint64) {
	slot := s.slot.Load()
	if slot == nil {
		return nil, 0
	}
	return slot.img, slot.seq
}
