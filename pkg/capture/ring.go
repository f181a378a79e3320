// Package capture implements the triple-buffered frame handoff between a
// media engine's decoding thread and the host application's display thread.
//
// Three surfaces rotate through the roles render (being written), swap (last
// complete frame not yet claimed) and present (frame exposed to the display).
// The decoder publishes by exchanging render and swap; the display acquires
// by exchanging swap and present. Both are index swaps under one mutex, so
// neither thread ever waits on the other for more than a few instructions,
// and no frame is readable while it is being written.
package capture

import (
	"os"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// exitFunc is called on non-recoverable device errors. Swapped in tests.
var exitFunc = os.Exit

// Surface is a texture with an attached off-screen render target.
type Surface struct {
	Texture ports.TextureID
	Target  ports.FramebufferID
}

// SurfaceRing owns exactly three surfaces and the role permutation over
// them. It is the sole owner of role-index mutation.
type SurfaceRing struct {
	device ports.GraphicsDevice
	logger ports.Logger

	mu       sync.Mutex
	surfaces [3]Surface
	render   int
	swap     int
	present  int
	// acquired is true when a complete frame is waiting in the swap slot
	// that the display has not yet claimed.
	acquired bool
	// published is true once any frame has completed since the last
	// (re)allocation; until then Acquire returns the zero handle.
	published bool
	width     int
	height    int
	allocated bool
}

// NewSurfaceRing creates an empty ring. Surfaces are created on the first
// Allocate call, once output dimensions are known.
func NewSurfaceRing(device ports.GraphicsDevice, logger ports.Logger) *SurfaceRing {
	return &SurfaceRing{
		device:  device,
		logger:  logger.WithComponent("ring"),
		render:  0,
		swap:    1,
		present: 2,
	}
}

// Allocate destroys any existing surfaces and creates three new
// texture+target pairs at the given dimensions, resetting the roles to the
// initial permutation. The whole exchange happens under the ring mutex so a
// concurrent Acquire can never observe a partially rebuilt ring.
//
// An unusable render target is a non-recoverable environment error:
// continuing would render into an undefined target, so the process exits.
func (r *SurfaceRing) Allocate(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.destroyLocked()

	for i := range r.surfaces {
		tex, err := r.device.CreateTexture(width, height)
		if err != nil {
			r.logger.Error("Failed to create surface texture: %s", err)
			exitFunc(1)
			return
		}
		fb, err := r.device.CreateFramebuffer(tex)
		if err != nil {
			r.logger.Error("Failed to create render target: %s", err)
			exitFunc(1)
			return
		}
		if err := r.device.ValidateFramebuffer(fb); err != nil {
			r.logger.Error("Render target incomplete: %s", err)
			exitFunc(1)
			return
		}
		r.surfaces[i] = Surface{Texture: tex, Target: fb}
	}

	r.render, r.swap, r.present = 0, 1, 2
	r.acquired = false
	r.published = false
	r.width, r.height = width, height
	r.allocated = true
}

// Publish marks the surface at the render slot as the newest complete frame
// and returns the target the decoder must render the next frame into.
// Called by the decoding thread exactly once per fully-rendered frame.
func (r *SurfaceRing) Publish() ports.FramebufferID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.render, r.swap = r.swap, r.render
	r.acquired = true
	r.published = true
	return r.surfaces[r.render].Target
}

// Acquire claims the newest complete frame for presentation and returns its
// texture. Non-blocking; called by the display thread at most once per draw.
// Before the first publish it returns the zero handle, and with no new frame
// since the last call it returns the same handle again (repeat presentation
// is correct when the source rate is below the display rate).
func (r *SurfaceRing) Acquire() ports.TextureID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.allocated || !r.published {
		return 0
	}
	if r.acquired {
		r.present, r.swap = r.swap, r.present
		r.acquired = false
	}
	return r.surfaces[r.present].Texture
}

// RenderTarget returns the target currently bound to the render role.
func (r *SurfaceRing) RenderTarget() ports.FramebufferID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaces[r.render].Target
}

// Size returns the dimensions of the current allocation.
func (r *SurfaceRing) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Release destroys all three surfaces. Callable only when no frame is in
// flight, from the device-teardown lifecycle point.
func (r *SurfaceRing) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked()
}

func (r *SurfaceRing) destroyLocked() {
	if !r.allocated {
		return
	}
	textures := make([]ports.TextureID, 0, len(r.surfaces))
	targets := make([]ports.FramebufferID, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		textures = append(textures, s.Texture)
		targets = append(targets, s.Target)
	}
	r.device.DeleteFramebuffers(targets...)
	r.device.DeleteTextures(textures...)
	r.surfaces = [3]Surface{}
	r.render, r.swap, r.present = 0, 1, 2
	r.acquired = false
	r.published = false
	r.width, r.height = 0, 0
	r.allocated = false
}
