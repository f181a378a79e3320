// Package filesink writes presented frames as a numbered PNG sequence.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/framecast/pkg/ports"
)

// FileSink stores each presented frame as <dir>/frame-NNNNN.png.
type FileSink struct {
	fs  ports.FileSystem
	dir string
}

// New creates a file sink writing into dir, creating it if needed.
func New(fs ports.FileSystem, dir string) (*FileSink, error) {
	if err := fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &FileSink{fs: fs, dir: dir}, nil
}

// Enabled always returns true; readback is the point of this sink.
func (s *FileSink) Enabled() bool {
	return true
}

// WriteFrame encodes img as PNG and stores it under the frame index.
func (s *FileSink) WriteFrame(index int, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", index, err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%05d.png", index))
	if err := s.fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var _ ports.PresentSink = (*FileSink)(nil)
