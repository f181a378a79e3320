package mocks

import (
	"context"
	"image"

	"github.com/user/framecast/pkg/ports"
)

// Source is a mock implementation of ports.FrameSource.
type Source struct {
	OpenFunc   func(path string) (*ports.MediaInfo, error)
	FramesFunc func(ctx context.Context) (<-chan ports.VideoFrame, error)
	CloseFunc  func()

	OpenedPath string
	Closed     bool
}

func (s *Source) Open(path string) (*ports.MediaInfo, error) {
	s.OpenedPath = path
	if s.OpenFunc != nil {
		return s.OpenFunc(path)
	}
	return &ports.MediaInfo{Width: 64, Height: 48}, nil
}

func (s *Source) Frames(ctx context.Context) (<-chan ports.VideoFrame, error) {
	if s.FramesFunc != nil {
		return s.FramesFunc(ctx)
	}
	ch := make(chan ports.VideoFrame)
	close(ch)
	return ch, nil
}

func (s *Source) Close() {
	s.Closed = true
	if s.CloseFunc != nil {
		s.CloseFunc()
	}
}

var _ ports.FrameSource = (*Source)(nil)

// SolidFrame returns a uniformly colored RGBA frame, a convenient fixture
// for engine and display tests.
func SolidFrame(width, height int, r, g, b uint8, timestampMs int) ports.VideoFrame {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 0xFF
	}
	return ports.VideoFrame{Image: img, TimestampMs: timestampMs, DurationMs: 33}
}
