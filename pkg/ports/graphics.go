package ports

import (
	"errors"
	"image"
)

// TextureID is an opaque handle to a device texture.
// The zero value is never a valid handle; GetNextFrame returns it before the
// first frame has completed.
type TextureID uint32

// FramebufferID is an opaque handle to an off-screen render target with a
// texture attached as its color output. The zero value means "unbound".
type FramebufferID uint32

// Common graphics device errors.
var (
	// ErrNoContext is returned when a device call requires the shared
	// context to be current on the calling thread and it is not.
	ErrNoContext = errors.New("graphics: shared context not current")

	// ErrNoTarget is returned when a draw call is issued with no render
	// target bound.
	ErrNoTarget = errors.New("graphics: no render target bound")

	// ErrIncompleteTarget is returned when a render target fails the
	// completeness check.
	ErrIncompleteTarget = errors.New("graphics: render target incomplete")

	// ErrInvalidHandle is returned for operations on unknown handles.
	ErrInvalidHandle = errors.New("graphics: invalid handle")
)

// GraphicsDevice abstracts the GPU used for surface allocation, off-screen
// rendering and presentation readback.
//
// The device owns a single shared execution context. Every call except
// ReadTexture, MakeCurrent and GetProcAddress requires that context to be
// current on the calling thread; MakeCurrent is the only transfer mechanism.
type GraphicsDevice interface {
	// CreateTexture allocates an RGBA8 texture of the given dimensions.
	CreateTexture(width, height int) (TextureID, error)

	// DeleteTextures releases textures. Unknown handles are ignored.
	DeleteTextures(ids ...TextureID)

	// CreateFramebuffer allocates an off-screen render target with tex
	// attached as its color output.
	CreateFramebuffer(tex TextureID) (FramebufferID, error)

	// DeleteFramebuffers releases render targets. Unknown handles are
	// ignored.
	DeleteFramebuffers(ids ...FramebufferID)

	// ValidateFramebuffer reports whether the target is complete and
	// usable. A non-nil error means rendering into it is undefined.
	ValidateFramebuffer(fb FramebufferID) error

	// BindFramebuffer makes fb the active render target for subsequent
	// draw calls. Binding zero detaches the active target.
	BindFramebuffer(fb FramebufferID)

	// DrawPixels renders img into the currently bound render target,
	// scaled to the target dimensions.
	DrawPixels(img image.Image) error

	// ReadTexture returns a copy of the texture contents. This is the
	// display-side call and does not require the shared context; textures
	// are shared between the decoder context and the display context.
	ReadTexture(tex TextureID) (*image.RGBA, error)

	// MakeCurrent attaches (enter=true) or detaches (enter=false) the
	// shared context on the calling thread. Returns false when the
	// transfer failed; the caller must then abort the in-flight operation.
	MakeCurrent(enter bool) bool

	// GetProcAddress resolves a device function by symbol name.
	// Returns 0 when the symbol is unknown.
	GetProcAddress(name string) uintptr
}
