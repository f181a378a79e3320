// Package engine drives playback: it decodes frames from a source, renders
// them into the video output's off-screen targets and reports per-frame
// completion, standing in for a media engine's decoding thread.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/user/framecast/pkg/ports"
)

// Playback errors.
var (
	// ErrSetupRejected means the video output refused the session.
	ErrSetupRejected = errors.New("engine: video output rejected the session")

	// ErrOutputRejected means the video output refused the negotiated
	// frame dimensions.
	ErrOutputRejected = errors.New("engine: video output rejected the output configuration")

	// ErrContextAttach means the shared device context could not be made
	// current on the decoding thread.
	ErrContextAttach = errors.New("engine: failed to attach the shared device context")
)

// Options controls playback behavior.
type Options struct {
	// RealTime paces frame delivery by the source timestamps instead of
	// decoding as fast as possible.
	RealTime bool

	// Shuffle picks a random playlist entry instead of the first one.
	Shuffle bool

	// Seed seeds the shuffle pick. Zero means current time.
	Seed int64
}

// Stats summarizes a finished playback run.
type Stats struct {
	Input           string
	Width           int
	Height          int
	FramesDecoded   int
	FramesPublished int
	ElapsedMs       int
}

// Engine plays one media item (or one entry of a playlist) into a video
// output. Play owns its goroutine's OS thread for the duration of the run;
// the display side polls the output's frame provider concurrently.
type Engine struct {
	source ports.FrameSource
	out    ports.VideoOutput
	device ports.GraphicsDevice
	fs     ports.FileSystem
	logger ports.Logger
	opts   Options
}

// New creates a playback engine.
func New(source ports.FrameSource, out ports.VideoOutput, device ports.GraphicsDevice, fs ports.FileSystem, logger ports.Logger, opts Options) *Engine {
	return &Engine{
		source: source,
		out:    out,
		device: device,
		fs:     fs,
		logger: logger.WithComponent("engine"),
		opts:   opts,
	}
}

// Play runs one playback session to completion or until ctx is cancelled.
// path may name a media file or an .m3u playlist.
func (e *Engine) Play(ctx context.Context, path string) (Stats, error) {
	entries, err := resolvePlaylist(e.fs, path)
	if err != nil {
		return Stats{}, err
	}
	seed := e.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pick := selectEntry(entries, e.opts.Shuffle, seed)
	if len(entries) > 1 {
		e.logger.Info("Playlist: selected entry %d/%d", pick+1, len(entries))
	}
	selected := entries[pick]

	info, err := e.source.Open(selected)
	if err != nil {
		e.logger.Error("Failed to open media: %s", err)
		return Stats{}, fmt.Errorf("failed to open media %s: %w", selected, err)
	}
	defer e.source.Close()
	e.logger.Info("Opened %s: %dx%d", selected, info.Width, info.Height)

	if !e.out.OnSetup(ports.DeviceConfig{}) {
		return Stats{}, ErrSetupRejected
	}

	// The shared context is thread-affine: every device call below must
	// come from this OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !e.out.OnMakeCurrent(true) {
		e.logger.Error("Failed to attach context")
		return Stats{}, ErrContextAttach
	}
	defer func() {
		e.out.OnCleanup()
		e.out.OnMakeCurrent(false)
	}()

	frames, err := e.source.Frames(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to start decoding %s: %w", selected, err)
	}

	stats := Stats{Input: selected}
	start := time.Now()

	for frame := range frames {
		select {
		case <-ctx.Done():
			return e.finish(stats, start), ctx.Err()
		default:
		}

		b := frame.Image.Bounds()
		if b.Dx() != stats.Width || b.Dy() != stats.Height {
			if _, ok := e.out.OnUpdateOutput(ports.RenderConfig{Width: b.Dx(), Height: b.Dy()}); !ok {
				return e.finish(stats, start), ErrOutputRejected
			}
			stats.Width, stats.Height = b.Dx(), b.Dy()
		}
		stats.FramesDecoded++

		if e.opts.RealTime {
			if err := e.pace(ctx, start, frame.TimestampMs); err != nil {
				return e.finish(stats, start), err
			}
		}

		if err := e.device.DrawPixels(frame.Image); err != nil {
			return e.finish(stats, start), fmt.Errorf("failed to render frame %d: %w", stats.FramesDecoded, err)
		}
		e.out.OnSwap()
		stats.FramesPublished++
	}

	stats = e.finish(stats, start)
	if stats.FramesDecoded == 0 {
		e.logger.Warn("No frames decoded, source may be unsupported")
	}
	return stats, ctx.Err()
}

// pace sleeps until the frame's timestamp relative to playback start.
func (e *Engine) pace(ctx context.Context, start time.Time, timestampMs int) error {
	due := time.Duration(timestampMs) * time.Millisecond
	wait := due - time.Since(start)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) finish(stats Stats, start time.Time) Stats {
	stats.ElapsedMs = int(time.Since(start).Milliseconds())
	e.logger.Info("Decoded %d frames", stats.FramesDecoded)
	e.logger.Debug("Decoding finished in %d ms", stats.ElapsedMs)
	return stats
}
