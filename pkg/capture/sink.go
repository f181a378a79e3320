package capture

import (
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// sessionState tracks where a streaming session is in its lifecycle.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateNegotiating
	stateStreaming
)

// FrameCaptureSink adapts a media engine's video-output callbacks onto a
// SurfaceRing and arbitrates shared-context ownership between the decoding
// thread and the display thread.
//
// It implements ports.VideoOutput for the engine side and
// ports.FrameProvider for the display side.
type FrameCaptureSink struct {
	device ports.GraphicsDevice
	logger ports.Logger
	ring   *SurfaceRing

	mu     sync.Mutex
	state  sessionState
	width  int
	height int
}

// New creates a FrameCaptureSink over the given device.
func New(device ports.GraphicsDevice, logger ports.Logger) *FrameCaptureSink {
	log := logger.WithComponent("capture")
	return &FrameCaptureSink{
		device: device,
		logger: log,
		ring:   NewSurfaceRing(device, logger),
	}
}

// OnSetup records that a session is starting. No dimensions are known yet
// and the shared context must not be used here.
func (s *FrameCaptureSink) OnSetup(cfg ports.DeviceConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = 0, 0
	s.state = stateNegotiating
	s.logger.Debug("Session setup, hardware decoding: %t", cfg.HardwareDecoding)
	return true
}

// OnUpdateOutput (re)allocates the ring when dimensions change, binds the
// render target for the first frame and returns the single fixed output
// configuration this sink supports.
func (s *FrameCaptureSink) OnUpdateOutput(cfg ports.RenderConfig) (ports.OutputConfig, bool) {
	s.mu.Lock()
	resized := cfg.Width != s.width || cfg.Height != s.height
	s.width, s.height = cfg.Width, cfg.Height
	s.state = stateStreaming
	s.mu.Unlock()

	if resized {
		s.logger.Debug("Output size changed: %dx%d", cfg.Width, cfg.Height)
		s.ring.Allocate(cfg.Width, cfg.Height)
	}
	s.device.BindFramebuffer(s.ring.RenderTarget())

	return ports.OutputConfig{
		PixelFormat: ports.PixelRGBA8,
		FullRange:   true,
		Colorspace:  ports.ColorspaceBT709,
		Primaries:   ports.PrimariesBT709,
		Transfer:    ports.TransferSRGB,
		Orientation: ports.OrientTopLeft,
	}, true
}

// OnSwap publishes the just-finished frame and rebinds the new render
// target. The publish itself is an index swap; the bind happens outside the
// ring mutex.
func (s *FrameCaptureSink) OnSwap() {
	next := s.ring.Publish()
	s.device.BindFramebuffer(next)
}

// OnMakeCurrent transfers shared-context ownership to or from the calling
// thread. This is the sole serialization point for context ownership.
func (s *FrameCaptureSink) OnMakeCurrent(enter bool) bool {
	return s.device.MakeCurrent(enter)
}

// OnGetProcAddress resolves a device function by symbol name.
func (s *FrameCaptureSink) OnGetProcAddress(name string) uintptr {
	return s.device.GetProcAddress(name)
}

// OnCleanup releases the ring synchronously; the engine may destroy the
// shared context as soon as this returns.
func (s *FrameCaptureSink) OnCleanup() {
	s.device.BindFramebuffer(0)
	s.ring.Release()
	s.mu.Lock()
	s.state = stateUninitialized
	s.width, s.height = 0, 0
	s.mu.Unlock()
	s.logger.Debug("Session cleaned up")
}

// GetNextFrame returns the texture holding the newest complete frame, or the
// zero handle before the first frame has ever completed. Non-blocking;
// called once per draw by the display thread.
func (s *FrameCaptureSink) GetNextFrame() ports.TextureID {
	return s.ring.Acquire()
}

// Size returns the currently negotiated output dimensions.
func (s *FrameCaptureSink) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

var (
	_ ports.VideoOutput   = (*FrameCaptureSink)(nil)
	_ ports.FrameProvider = (*FrameCaptureSink)(nil)
)
