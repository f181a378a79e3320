// Package display implements the presentation loop: the application-side
// thread that polls the frame provider at a fixed rate and hands each
// presented frame to a sink.
package display

import (
	"context"
	"time"

	"github.com/user/framecast/pkg/ports"
)

// Stats summarizes a presentation run.
type Stats struct {
	// TicksTotal is the number of display ticks that ran.
	TicksTotal int

	// FramesPresented counts ticks that presented a frame, including
	// repeats of an unchanged frame.
	FramesPresented int

	// BlankTicks counts ticks before the first frame was available.
	BlankTicks int
}

// Presenter polls a frame provider on a fixed tick and writes every
// presented frame to a sink. It stands in for the host application's render
// loop.
type Presenter struct {
	device ports.GraphicsDevice
	frames ports.FrameProvider
	sink   ports.PresentSink
	logger ports.Logger
}

// New creates a presenter.
func New(device ports.GraphicsDevice, frames ports.FrameProvider, sink ports.PresentSink, logger ports.Logger) *Presenter {
	return &Presenter{
		device: device,
		frames: frames,
		sink:   sink,
		logger: logger.WithComponent("display"),
	}
}

// Run ticks at the given rate until ctx is cancelled. Each tick claims the
// newest complete frame; the zero handle (no frame yet) draws nothing. A
// sink write failure is logged and presentation continues.
func (p *Presenter) Run(ctx context.Context, fps int) (Stats, error) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var stats Stats
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Presented %d frames (%d ticks without output)",
				stats.FramesPresented, stats.BlankTicks)
			return stats, nil
		case <-ticker.C:
		}
		stats.TicksTotal++

		tex := p.frames.GetNextFrame()
		if tex == 0 {
			stats.BlankTicks++
			continue
		}

		if p.sink.Enabled() {
			img, err := p.device.ReadTexture(tex)
			if err != nil {
				p.logger.Warn("Failed to write frame %d: %s", stats.FramesPresented, err)
				continue
			}
			if err := p.sink.WriteFrame(stats.FramesPresented, img); err != nil {
				p.logger.Warn("Failed to write frame %d: %s", stats.FramesPresented, err)
				continue
			}
		}
		stats.FramesPresented++
	}
}
