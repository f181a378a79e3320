// Package nullsink discards presented frames.
package nullsink

import (
	"image"

	"github.com/user/framecast/pkg/ports"
)

// NullSink drops every frame. Presentation still runs; readback is skipped.
type NullSink struct{}

// New creates a discarding sink.
func New() *NullSink {
	return &NullSink{}
}

// Enabled returns false so callers can skip readback entirely.
func (s *NullSink) Enabled() bool {
	return false
}

// WriteFrame discards the frame.
func (s *NullSink) WriteFrame(index int, img image.Image) error {
	return nil
}

var _ ports.PresentSink = (*NullSink)(nil)
