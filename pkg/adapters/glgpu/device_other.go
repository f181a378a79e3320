//go:build !linux

// Package glgpu implements ports.GraphicsDevice on a headless OpenGL context
// obtained through EGL. Only available on Linux.
package glgpu

import (
	"errors"
	"image"

	"github.com/user/framecast/pkg/ports"
)

// ErrUnsupported is returned by New on platforms without EGL support.
var ErrUnsupported = errors.New("glgpu: EGL device is only supported on linux")

// Device is unavailable on this platform.
type Device struct{}

// New always fails on this platform.
func New() (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) CreateTexture(width, height int) (ports.TextureID, error) {
	return 0, ErrUnsupported
}
func (d *Device) DeleteTextures(ids ...ports.TextureID) {}
func (d *Device) CreateFramebuffer(tex ports.TextureID) (ports.FramebufferID, error) {
	return 0, ErrUnsupported
}
func (d *Device) DeleteFramebuffers(ids ...ports.FramebufferID)     {}
func (d *Device) ValidateFramebuffer(fb ports.FramebufferID) error  { return ErrUnsupported }
func (d *Device) BindFramebuffer(fb ports.FramebufferID)            {}
func (d *Device) DrawPixels(img image.Image) error                  { return ErrUnsupported }
func (d *Device) ReadTexture(tex ports.TextureID) (*image.RGBA, error) {
	return nil, ErrUnsupported
}
func (d *Device) MakeCurrent(enter bool) bool        { return false }
func (d *Device) GetProcAddress(name string) uintptr { return 0 }
func (d *Device) Close()                             {}

var _ ports.GraphicsDevice = (*Device)(nil)
