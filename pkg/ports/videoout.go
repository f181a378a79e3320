package ports

// PixelFormat identifies the pixel layout of the negotiated output.
type PixelFormat int

const (
	// PixelRGBA8 is 8-bit-per-channel RGBA, the only format this output
	// supports.
	PixelRGBA8 PixelFormat = iota
)

// Colorspace identifies the YUV-to-RGB conversion matrix of the output.
type Colorspace int

const (
	// ColorspaceBT709 is the ITU-R BT.709 colorspace.
	ColorspaceBT709 Colorspace = iota
)

// Primaries identifies the color primaries of the output.
type Primaries int

const (
	// PrimariesBT709 are the ITU-R BT.709 primaries.
	PrimariesBT709 Primaries = iota
)

// TransferFunc identifies the transfer function of the output.
type TransferFunc int

const (
	// TransferSRGB is the sRGB transfer function.
	TransferSRGB TransferFunc = iota
)

// Orientation identifies where the first output pixel sits.
type Orientation int

const (
	// OrientTopLeft means row 0 is the top of the picture.
	OrientTopLeft Orientation = iota
)

// DeviceConfig is the device capability request passed to OnSetup.
type DeviceConfig struct {
	// HardwareDecoding is true when the engine negotiated a hardware
	// decoder for the session.
	HardwareDecoding bool
}

// RenderConfig carries the negotiated frame dimensions passed to
// OnUpdateOutput on the first frame and on every mid-stream resize.
type RenderConfig struct {
	Width  int
	Height int
}

// OutputConfig is the output descriptor the video output fills in response
// to OnUpdateOutput.
type OutputConfig struct {
	PixelFormat PixelFormat
	FullRange   bool
	Colorspace  Colorspace
	Primaries   Primaries
	Transfer    TransferFunc
	Orientation Orientation
}

// VideoOutput is the lifecycle-callback capability a media engine drives
// from its decoding thread. One concrete type implements the whole set; the
// engine never sees the implementation behind it.
//
// Callback contract, in call order per streaming session:
//
//	OnSetup          once, before any frame; no device context available.
//	OnUpdateOutput   on the first frame and on every dimension change;
//	                 the shared context is current on the calling thread.
//	OnSwap           once per fully-rendered frame.
//	OnCleanup        once, at session teardown; must not return until all
//	                 device resources are released.
//
// OnMakeCurrent and OnGetProcAddress may be called at any point from the
// decoding thread, and OnMakeCurrent also from the owning thread during
// teardown.
type VideoOutput interface {
	// OnSetup records the device capability request and resets dimension
	// tracking. Returns false to reject the session.
	OnSetup(cfg DeviceConfig) bool

	// OnUpdateOutput prepares render targets for the given dimensions and
	// returns the output descriptor. Returns false to reject the
	// configuration.
	OnUpdateOutput(cfg RenderConfig) (OutputConfig, bool)

	// OnSwap publishes the just-finished frame and rebinds a fresh render
	// target for the next one.
	OnSwap()

	// OnMakeCurrent attaches or detaches the shared device context on the
	// calling thread. A false return means the caller must abort rather
	// than issue device calls.
	OnMakeCurrent(enter bool) bool

	// OnGetProcAddress resolves a device function by symbol name, or 0.
	OnGetProcAddress(name string) uintptr

	// OnCleanup releases all device resources held for the session.
	OnCleanup()
}

// FrameProvider is the polling contract exposed to the display thread.
type FrameProvider interface {
	// GetNextFrame returns the texture holding the newest complete frame.
	// Non-blocking; returns the zero handle before the first frame has
	// ever completed, and repeats the previous handle when no new frame
	// arrived since the last call.
	GetNextFrame() TextureID
}
