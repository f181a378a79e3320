package ports

import (
	"context"
	"image"
)

// VideoFrame represents a decoded video frame with timing information.
type VideoFrame struct {
	Image       image.Image
	TimestampMs int
	DurationMs  int
}

// MediaInfo describes an opened media item.
type MediaInfo struct {
	Width      int
	Height     int
	DurationMs int
}

// FrameSource abstracts the demux/decode side of a media item.
type FrameSource interface {
	// Open prepares the media at path and returns its properties.
	Open(path string) (*MediaInfo, error)

	// Frames starts decoding and returns a channel of frames in decode
	// order. The channel is closed at end of stream or when ctx is
	// cancelled.
	Frames(ctx context.Context) (<-chan VideoFrame, error)

	// Close releases decoder resources.
	Close()
}
