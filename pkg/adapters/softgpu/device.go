// Package softgpu implements ports.GraphicsDevice entirely in memory.
// Textures are RGBA images and render targets draw through a 2D raster
// context, so the full playback pipeline runs with no GPU or display server.
package softgpu

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/fogleman/gg"

	"github.com/user/framecast/pkg/ports"
)

// Device is a software ports.GraphicsDevice. Handles are issued from one
// sequence so a texture handle can never collide with a framebuffer handle.
//
// The shared-context contract is emulated with a single ownership slot:
// draws require the slot to be held by someone, and MakeCurrent(true) fails
// while it is.
type Device struct {
	mu           sync.Mutex
	nextID       uint32
	textures     map[ports.TextureID]*image.RGBA
	framebuffers map[ports.FramebufferID]ports.TextureID
	bound        ports.FramebufferID
	held         atomic.Bool
}

// New creates an empty software device.
func New() *Device {
	return &Device{
		textures:     make(map[ports.TextureID]*image.RGBA),
		framebuffers: make(map[ports.FramebufferID]ports.TextureID),
	}
}

func (d *Device) CreateTexture(width, height int) (ports.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("softgpu: invalid texture size %dx%d", width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := ports.TextureID(d.nextID)
	d.textures[id] = image.NewRGBA(image.Rect(0, 0, width, height))
	return id, nil
}

func (d *Device) DeleteTextures(ids ...ports.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		delete(d.textures, id)
	}
}

func (d *Device) CreateFramebuffer(tex ports.TextureID) (ports.FramebufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[tex]; !ok {
		return 0, ports.ErrInvalidHandle
	}
	d.nextID++
	id := ports.FramebufferID(d.nextID)
	d.framebuffers[id] = tex
	return id, nil
}

func (d *Device) DeleteFramebuffers(ids ...ports.FramebufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		delete(d.framebuffers, id)
		if d.bound == id {
			d.bound = 0
		}
	}
}

func (d *Device) ValidateFramebuffer(fb ports.FramebufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tex, ok := d.framebuffers[fb]
	if !ok {
		return ports.ErrInvalidHandle
	}
	if _, ok := d.textures[tex]; !ok {
		return ports.ErrIncompleteTarget
	}
	return nil
}

func (d *Device) BindFramebuffer(fb ports.FramebufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound = fb
}

// DrawPixels rasterizes img into the bound target's texture, scaled to the
// texture dimensions.
func (d *Device) DrawPixels(img image.Image) error {
	if !d.held.Load() {
		return ports.ErrNoContext
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bound == 0 {
		return ports.ErrNoTarget
	}
	tex, ok := d.framebuffers[d.bound]
	if !ok {
		return ports.ErrInvalidHandle
	}
	dst, ok := d.textures[tex]
	if !ok {
		return ports.ErrIncompleteTarget
	}

	dc := gg.NewContextForRGBA(dst)
	sb := img.Bounds()
	db := dst.Bounds()
	if sb.Dx() != db.Dx() || sb.Dy() != db.Dy() {
		dc.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	}
	dc.DrawImage(img, 0, 0)
	return nil
}

func (d *Device) ReadTexture(tex ports.TextureID) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	src, ok := d.textures[tex]
	if !ok {
		return nil, ports.ErrInvalidHandle
	}
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}

func (d *Device) MakeCurrent(enter bool) bool {
	if enter {
		return d.held.CompareAndSwap(false, true)
	}
	d.held.Store(false)
	return true
}

// GetProcAddress always returns 0: the software device has no loadable
// symbols.
func (d *Device) GetProcAddress(name string) uintptr {
	return 0
}

var _ ports.GraphicsDevice = (*Device)(nil)
