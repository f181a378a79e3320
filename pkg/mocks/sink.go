package mocks

import (
	"image"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// PresentSink is a mock implementation of ports.PresentSink that records
// every frame it receives.
type PresentSink struct {
	WriteFrameFunc func(index int, img image.Image) error

	enabled bool

	mu     sync.Mutex
	Frames []image.Image
}

// NewPresentSink creates a recording sink.
func NewPresentSink(enabled bool) *PresentSink {
	return &PresentSink{enabled: enabled}
}

func (s *PresentSink) Enabled() bool {
	return s.enabled
}

func (s *PresentSink) WriteFrame(index int, img image.Image) error {
	if s.WriteFrameFunc != nil {
		return s.WriteFrameFunc(index, img)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Frames = append(s.Frames, img)
	return nil
}

// FrameCount returns the number of recorded frames.
func (s *PresentSink) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Frames)
}

var _ ports.PresentSink = (*PresentSink)(nil)
