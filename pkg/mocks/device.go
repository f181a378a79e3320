// Package mocks provides hand-rolled mock implementations of the ports
// interfaces for testing.
package mocks

import (
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/user/framecast/pkg/ports"
)

// Device is a mock implementation of ports.GraphicsDevice.
//
// Without overrides it behaves as a small in-memory device: handles are
// issued sequentially starting at 1, framebuffers remember their attached
// texture, DrawPixels writes into the bound target's texture and ReadTexture
// returns a copy. Context ownership is a single compare-and-swap slot.
type Device struct {
	CreateTextureFunc       func(width, height int) (ports.TextureID, error)
	CreateFramebufferFunc   func(tex ports.TextureID) (ports.FramebufferID, error)
	ValidateFramebufferFunc func(fb ports.FramebufferID) error
	MakeCurrentFunc         func(enter bool) bool
	GetProcAddressFunc      func(name string) uintptr

	mu           sync.Mutex
	nextID       uint32
	textures     map[ports.TextureID]*image.RGBA
	framebuffers map[ports.FramebufferID]ports.TextureID
	bound        ports.FramebufferID
	held         atomic.Bool

	// Counters for assertions.
	TexturesCreated     int
	TexturesDeleted     int
	FramebuffersCreated int
	FramebuffersDeleted int
	DrawCalls           int
	BindCalls           []ports.FramebufferID
}

// NewDevice creates a mock device with default in-memory behavior.
func NewDevice() *Device {
	return &Device{
		textures:     make(map[ports.TextureID]*image.RGBA),
		framebuffers: make(map[ports.FramebufferID]ports.TextureID),
	}
}

func (d *Device) CreateTexture(width, height int) (ports.TextureID, error) {
	if d.CreateTextureFunc != nil {
		return d.CreateTextureFunc(width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := ports.TextureID(d.nextID)
	d.textures[id] = image.NewRGBA(image.Rect(0, 0, width, height))
	d.TexturesCreated++
	return id, nil
}

func (d *Device) DeleteTextures(ids ...ports.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if _, ok := d.textures[id]; ok {
			delete(d.textures, id)
			d.TexturesDeleted++
		}
	}
}

func (d *Device) CreateFramebuffer(tex ports.TextureID) (ports.FramebufferID, error) {
	if d.CreateFramebufferFunc != nil {
		return d.CreateFramebufferFunc(tex)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := ports.FramebufferID(d.nextID)
	d.framebuffers[id] = tex
	d.FramebuffersCreated++
	return id, nil
}

func (d *Device) DeleteFramebuffers(ids ...ports.FramebufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if _, ok := d.framebuffers[id]; ok {
			delete(d.framebuffers, id)
			d.FramebuffersDeleted++
		}
	}
}

func (d *Device) ValidateFramebuffer(fb ports.FramebufferID) error {
	if d.ValidateFramebufferFunc != nil {
		return d.ValidateFramebufferFunc(fb)
	}
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
	d.BindCalls = append(d.BindCalls, fb)
}

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
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	d.DrawCalls++
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
	if d.MakeCurrentFunc != nil {
		return d.MakeCurrentFunc(enter)
	}
	if enter {
		return d.held.CompareAndSwap(false, true)
	}
	d.held.Store(false)
	return true
}

func (d *Device) GetProcAddress(name string) uintptr {
	if d.GetProcAddressFunc != nil {
		return d.GetProcAddressFunc(name)
	}
	return 0
}

// Bound returns the currently bound render target.
func (d *Device) Bound() ports.FramebufferID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bound
}

// TextureCount returns the number of live textures.
func (d *Device) TextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// TextureSize returns the dimensions of a live texture.
func (d *Device) TextureSize(tex ports.TextureID) (int, int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, ok := d.textures[tex]
	if !ok {
		return 0, 0, false
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), true
}

var _ ports.GraphicsDevice = (*Device)(nil)
