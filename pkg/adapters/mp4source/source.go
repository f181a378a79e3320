package mp4source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// Source decodes H.264/MP4 files into frames. It implements
// ports.FrameSource.
type Source struct {
	logger     ports.Logger
	ffmpegPath string

	decoder *frameDecoder
	track   *videoTrack
	path    string

	// cancel stops the decode goroutine started by Frames; wg joins it.
	// Close triggers both so teardown never races a decode in flight.
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an MP4 frame source. ffmpegPath overrides ffmpeg discovery;
// empty means search PATH and common locations.
func New(logger ports.Logger, ffmpegPath string) *Source {
	return &Source{
		logger:     logger.WithComponent("mp4"),
		ffmpegPath: ffmpegPath,
	}
}

// Open demuxes the media at path. The whole sample table is read up front;
// decoding is deferred to Frames.
func (s *Source) Open(path string) (*ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	track, err := demux(f)
	if err != nil {
		return nil, fmt.Errorf("failed to demux %s: %w", path, err)
	}
	if len(track.Samples) == 0 {
		return nil, fmt.Errorf("no video samples in %s", path)
	}

	decoder, err := newFrameDecoder(s.ffmpegPath)
	if err != nil {
		return nil, err
	}

	s.track = track
	s.decoder = decoder
	s.path = path
	s.logger.Debug("Opened %s: %dx%d", path, track.Width, track.Height)
	return &ports.MediaInfo{
		Width:      track.Width,
		Height:     track.Height,
		DurationMs: track.DurationMs,
	}, nil
}

// Frames decodes the demuxed samples in order on a background goroutine.
// Samples ffmpeg cannot turn into a picture are skipped. The goroutine stops
// when ctx is cancelled or Close is called.
func (s *Source) Frames(ctx context.Context) (<-chan ports.VideoFrame, error) {
	// Locals, so a concurrent Close clearing the struct fields cannot be
	// observed mid-loop.
	track, decoder := s.track, s.decoder
	if track == nil || decoder == nil {
		return nil, fmt.Errorf("mp4source: not opened")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	ch := make(chan ports.VideoFrame)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(ch)
		decoded := 0
		for _, sample := range track.Samples {
			if runCtx.Err() != nil {
				return
			}
			img, err := decoder.Decode(sample.Data)
			if err != nil {
				s.logger.Debug("Skipping sample at %d ms: %s", sample.TimestampMs, err)
				continue
			}
			if img == nil {
				continue
			}
			decoded++
			select {
			case <-runCtx.Done():
				return
			case ch <- ports.VideoFrame{
				Image:       img,
				TimestampMs: sample.TimestampMs,
				DurationMs:  sample.DurationMs,
			}:
			}
		}
		s.logger.Debug("Decoded %d frames", decoded)
	}()
	return ch, nil
}

// Close stops any in-flight decode goroutine, waits for it to finish and
// releases the demuxed track.
func (s *Source) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.cancel = nil
	s.track = nil
	s.decoder = nil
}

var _ ports.FrameSource = (*Source)(nil)
