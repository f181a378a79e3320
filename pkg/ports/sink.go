package ports

import (
	"image"
)

// PresentSink receives every frame the display thread presents.
// It allows the presentation output to be saved, streamed or discarded.
type PresentSink interface {
	// Enabled returns true if the sink keeps its input. Callers may skip
	// readback work when it returns false.
	Enabled() bool

	// WriteFrame stores one presented frame. index increases by one per
	// presented frame, starting at zero.
	WriteFrame(index int, img image.Image) error
}
