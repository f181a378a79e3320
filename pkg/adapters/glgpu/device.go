//go:build linux

// Package glgpu implements ports.GraphicsDevice on a headless OpenGL context
// obtained through EGL. Libraries are loaded at runtime, so the package
// builds without cgo or development headers.
package glgpu

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/image/draw"

	"github.com/user/framecast/pkg/ports"
)

// EGL constants, from EGL/egl.h.
const (
	eglSurfaceType    = 0x3033
	eglPbufferBit     = 0x0001
	eglRenderableType = 0x3040
	eglOpenGLBit      = 0x0008
	eglRedSize        = 0x3024
	eglGreenSize      = 0x3023
	eglBlueSize       = 0x3022
	eglAlphaSize      = 0x3021
	eglNone           = 0x3038
	eglWidth          = 0x3057
	eglHeight         = 0x3056
	eglOpenGLAPI      = 0x30A2
	eglTrue           = 1
)

// GL constants, from GL/gl.h.
const (
	glTexture2D           = 0x0DE1
	glRGBA                = 0x1908
	glRGBA8               = 0x8058
	glUnsignedByte        = 0x1401
	glFramebufferTarget   = 0x8D40
	glColorAttachment0    = 0x8CE0
	glFramebufferComplete = 0x8CD5
	glTextureMinFilter    = 0x2801
	glTextureMagFilter    = 0x2800
	glLinear              = 0x2601
)

// Device drives a real GPU through two shared EGL contexts: the primary one
// handed back and forth with the decoding thread via MakeCurrent, and a read
// context the display thread uses for texture readback. Textures are shared
// between the two.
type Device struct {
	eglGetDisplay            func(display uintptr) uintptr
	eglInitialize            func(dpy uintptr, major, minor *int32) uint32
	eglBindAPI               func(api uint32) uint32
	eglChooseConfig          func(dpy uintptr, attribs *int32, configs *uintptr, size int32, num *int32) uint32
	eglCreatePbufferSurface  func(dpy, config uintptr, attribs *int32) uintptr
	eglCreateContext         func(dpy, config, share uintptr, attribs *int32) uintptr
	eglMakeCurrent           func(dpy, drawSurf, readSurf, ctx uintptr) uint32
	eglDestroyContext        func(dpy, ctx uintptr) uint32
	eglDestroySurface        func(dpy, surf uintptr) uint32
	eglTerminate             func(dpy uintptr) uint32
	eglGetProcAddress        func(name string) uintptr
	glGenTextures            func(n int32, ids *uint32)
	glDeleteTextures         func(n int32, ids *uint32)
	glBindTexture            func(target, id uint32)
	glTexImage2D             func(target uint32, level, internalFormat, width, height, border int32, format, typ uint32, data unsafe.Pointer)
	glTexSubImage2D          func(target uint32, level, x, y, width, height int32, format, typ uint32, data unsafe.Pointer)
	glTexParameteri          func(target, pname uint32, param int32)
	glGenFramebuffers        func(n int32, ids *uint32)
	glDeleteFramebuffers     func(n int32, ids *uint32)
	glBindFramebuffer        func(target, id uint32)
	glFramebufferTexture2D   func(target, attachment, textarget, texture uint32, level int32)
	glCheckFramebufferStatus func(target uint32) uint32
	glGetTexImage            func(target uint32, level int32, format, typ uint32, pixels unsafe.Pointer)
	glFinish                 func()

	display  uintptr
	context  uintptr
	readCtx  uintptr
	surface  uintptr
	readSurf uintptr

	held atomic.Bool

	mu       sync.Mutex
	sizes    map[ports.TextureID][2]int
	attached map[ports.FramebufferID]ports.TextureID
	bound    ports.FramebufferID
	scratch  *image.RGBA

	readMu sync.Mutex
}

// New loads libEGL and libGL, initializes a headless display and creates the
// two shared contexts. The primary context is left detached; the decoding
// thread attaches it through MakeCurrent.
func New() (*Device, error) {
	d := &Device{
		sizes:    make(map[ports.TextureID][2]int),
		attached: make(map[ports.FramebufferID]ports.TextureID),
	}
	if err := d.load(); err != nil {
		return nil, err
	}

	d.display = d.eglGetDisplay(0)
	if d.display == 0 {
		return nil, fmt.Errorf("glgpu: no EGL display")
	}
	if d.eglInitialize(d.display, nil, nil) != eglTrue {
		return nil, fmt.Errorf("glgpu: failed to initialize EGL")
	}
	if d.eglBindAPI(eglOpenGLAPI) != eglTrue {
		return nil, fmt.Errorf("glgpu: failed to bind the OpenGL API")
	}

	configAttribs := []int32{
		eglSurfaceType, eglPbufferBit,
		eglRenderableType, eglOpenGLBit,
		eglRedSize, 8,
		eglGreenSize, 8,
		eglBlueSize, 8,
		eglAlphaSize, 8,
		eglNone,
	}
	var config uintptr
	var numConfigs int32
	if d.eglChooseConfig(d.display, &configAttribs[0], &config, 1, &numConfigs) != eglTrue || numConfigs == 0 {
		return nil, fmt.Errorf("glgpu: no usable EGL config")
	}

	surfaceAttribs := []int32{eglWidth, 1, eglHeight, 1, eglNone}
	d.surface = d.eglCreatePbufferSurface(d.display, config, &surfaceAttribs[0])
	d.readSurf = d.eglCreatePbufferSurface(d.display, config, &surfaceAttribs[0])
	if d.surface == 0 || d.readSurf == 0 {
		return nil, fmt.Errorf("glgpu: failed to create pbuffer surfaces")
	}

	d.context = d.eglCreateContext(d.display, config, 0, nil)
	if d.context == 0 {
		return nil, fmt.Errorf("glgpu: failed to create the primary context")
	}
	d.readCtx = d.eglCreateContext(d.display, config, d.context, nil)
	if d.readCtx == 0 {
		return nil, fmt.Errorf("glgpu: failed to create the read context")
	}
	return d, nil
}

func (d *Device) load() error {
	egl, err := purego.Dlopen("libEGL.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("glgpu: failed to load libEGL: %w", err)
	}
	gl, err := purego.Dlopen("libGL.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("glgpu: failed to load libGL: %w", err)
	}

	purego.RegisterLibFunc(&d.eglGetDisplay, egl, "eglGetDisplay")
	purego.RegisterLibFunc(&d.eglInitialize, egl, "eglInitialize")
	purego.RegisterLibFunc(&d.eglBindAPI, egl, "eglBindAPI")
	purego.RegisterLibFunc(&d.eglChooseConfig, egl, "eglChooseConfig")
	purego.RegisterLibFunc(&d.eglCreatePbufferSurface, egl, "eglCreatePbufferSurface")
	purego.RegisterLibFunc(&d.eglCreateContext, egl, "eglCreateContext")
	purego.RegisterLibFunc(&d.eglMakeCurrent, egl, "eglMakeCurrent")
	purego.RegisterLibFunc(&d.eglDestroyContext, egl, "eglDestroyContext")
	purego.RegisterLibFunc(&d.eglDestroySurface, egl, "eglDestroySurface")
	purego.RegisterLibFunc(&d.eglTerminate, egl, "eglTerminate")
	purego.RegisterLibFunc(&d.eglGetProcAddress, egl, "eglGetProcAddress")

	purego.RegisterLibFunc(&d.glGenTextures, gl, "glGenTextures")
	purego.RegisterLibFunc(&d.glDeleteTextures, gl, "glDeleteTextures")
	purego.RegisterLibFunc(&d.glBindTexture, gl, "glBindTexture")
	purego.RegisterLibFunc(&d.glTexImage2D, gl, "glTexImage2D")
	purego.RegisterLibFunc(&d.glTexSubImage2D, gl, "glTexSubImage2D")
	purego.RegisterLibFunc(&d.glTexParameteri, gl, "glTexParameteri")
	purego.RegisterLibFunc(&d.glGenFramebuffers, gl, "glGenFramebuffers")
	purego.RegisterLibFunc(&d.glDeleteFramebuffers, gl, "glDeleteFramebuffers")
	purego.RegisterLibFunc(&d.glBindFramebuffer, gl, "glBindFramebuffer")
	purego.RegisterLibFunc(&d.glFramebufferTexture2D, gl, "glFramebufferTexture2D")
	purego.RegisterLibFunc(&d.glCheckFramebufferStatus, gl, "glCheckFramebufferStatus")
	purego.RegisterLibFunc(&d.glGetTexImage, gl, "glGetTexImage")
	purego.RegisterLibFunc(&d.glFinish, gl, "glFinish")
	return nil
}

func (d *Device) CreateTexture(width, height int) (ports.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("glgpu: invalid texture size %dx%d", width, height)
	}
	var id uint32
	d.glGenTextures(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glgpu: texture allocation failed")
	}
	d.glBindTexture(glTexture2D, id)
	d.glTexParameteri(glTexture2D, glTextureMinFilter, glLinear)
	d.glTexParameteri(glTexture2D, glTextureMagFilter, glLinear)
	d.glTexImage2D(glTexture2D, 0, glRGBA8, int32(width), int32(height), 0, glRGBA, glUnsignedByte, nil)
	d.glBindTexture(glTexture2D, 0)

	tex := ports.TextureID(id)
	d.mu.Lock()
	d.sizes[tex] = [2]int{width, height}
	d.mu.Unlock()
	return tex, nil
}

func (d *Device) DeleteTextures(ids ...ports.TextureID) {
	d.mu.Lock()
	for _, id := range ids {
		delete(d.sizes, id)
	}
	d.mu.Unlock()
	for _, id := range ids {
		raw := uint32(id)
		d.glDeleteTextures(1, &raw)
	}
}

func (d *Device) CreateFramebuffer(tex ports.TextureID) (ports.FramebufferID, error) {
	d.mu.Lock()
	_, ok := d.sizes[tex]
	d.mu.Unlock()
	if !ok {
		return 0, ports.ErrInvalidHandle
	}

	var id uint32
	d.glGenFramebuffers(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glgpu: framebuffer allocation failed")
	}
	d.glBindFramebuffer(glFramebufferTarget, id)
	d.glFramebufferTexture2D(glFramebufferTarget, glColorAttachment0, glTexture2D, uint32(tex), 0)
	d.glBindFramebuffer(glFramebufferTarget, 0)

	fb := ports.FramebufferID(id)
	d.mu.Lock()
	d.attached[fb] = tex
	d.mu.Unlock()
	return fb, nil
}

func (d *Device) DeleteFramebuffers(ids ...ports.FramebufferID) {
	d.mu.Lock()
	for _, id := range ids {
		delete(d.attached, id)
		if d.bound == id {
			d.bound = 0
		}
	}
	d.mu.Unlock()
	for _, id := range ids {
		raw := uint32(id)
		d.glDeleteFramebuffers(1, &raw)
	}
}

func (d *Device) ValidateFramebuffer(fb ports.FramebufferID) error {
	d.mu.Lock()
	_, ok := d.attached[fb]
	d.mu.Unlock()
	if !ok {
		return ports.ErrInvalidHandle
	}
	d.glBindFramebuffer(glFramebufferTarget, uint32(fb))
	status := d.glCheckFramebufferStatus(glFramebufferTarget)
	d.glBindFramebuffer(glFramebufferTarget, 0)
	if status != glFramebufferComplete {
		return fmt.Errorf("%w (status 0x%04X)", ports.ErrIncompleteTarget, status)
	}
	return nil
}

func (d *Device) BindFramebuffer(fb ports.FramebufferID) {
	d.mu.Lock()
	d.bound = fb
	d.mu.Unlock()
	d.glBindFramebuffer(glFramebufferTarget, uint32(fb))
}

// DrawPixels uploads img into the bound target's texture, scaling on the CPU
// when the dimensions differ.
func (d *Device) DrawPixels(img image.Image) error {
	if !d.held.Load() {
		return ports.ErrNoContext
	}

	d.mu.Lock()
	if d.bound == 0 {
		d.mu.Unlock()
		return ports.ErrNoTarget
	}
	tex, ok := d.attached[d.bound]
	if !ok {
		d.mu.Unlock()
		return ports.ErrInvalidHandle
	}
	size, ok := d.sizes[tex]
	if !ok {
		d.mu.Unlock()
		return ports.ErrIncompleteTarget
	}
	pixels := d.upload(img, size[0], size[1])
	d.mu.Unlock()

	d.glBindTexture(glTexture2D, uint32(tex))
	d.glTexSubImage2D(glTexture2D, 0, 0, 0, int32(size[0]), int32(size[1]),
		glRGBA, glUnsignedByte, unsafe.Pointer(&pixels.Pix[0]))
	d.glBindTexture(glTexture2D, 0)
	d.glFinish()
	return nil
}

// upload converts img to tightly packed RGBA at the target size, reusing one
// scratch buffer across frames. Caller holds d.mu.
func (d *Device) upload(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Dx() == width && b.Dy() == height && rgba.Stride == width*4 {
		return rgba
	}
	if d.scratch == nil || d.scratch.Bounds().Dx() != width || d.scratch.Bounds().Dy() != height {
		d.scratch = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	if b.Dx() == width && b.Dy() == height {
		draw.Draw(d.scratch, d.scratch.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(d.scratch, d.scratch.Bounds(), img, b, draw.Src, nil)
	}
	return d.scratch
}

// ReadTexture runs on the display thread against the read context; textures
// are shared with the primary context, so no ownership transfer is needed.
func (d *Device) ReadTexture(tex ports.TextureID) (*image.RGBA, error) {
	d.mu.Lock()
	size, ok := d.sizes[tex]
	d.mu.Unlock()
	if !ok {
		return nil, ports.ErrInvalidHandle
	}

	d.readMu.Lock()
	defer d.readMu.Unlock()
	if d.eglMakeCurrent(d.display, d.readSurf, d.readSurf, d.readCtx) != eglTrue {
		return nil, ports.ErrNoContext
	}

	out := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	d.glBindTexture(glTexture2D, uint32(tex))
	d.glGetTexImage(glTexture2D, 0, glRGBA, glUnsignedByte, unsafe.Pointer(&out.Pix[0]))
	d.glBindTexture(glTexture2D, 0)
	return out, nil
}

func (d *Device) MakeCurrent(enter bool) bool {
	if enter {
		if !d.held.CompareAndSwap(false, true) {
			return false
		}
		if d.eglMakeCurrent(d.display, d.surface, d.surface, d.context) != eglTrue {
			d.held.Store(false)
			return false
		}
		return true
	}
	d.eglMakeCurrent(d.display, 0, 0, 0)
	d.held.Store(false)
	return true
}

func (d *Device) GetProcAddress(name string) uintptr {
	return d.eglGetProcAddress(name)
}

// Close tears down the contexts and the display connection. All textures and
// framebuffers must already be released.
func (d *Device) Close() {
	d.eglMakeCurrent(d.display, 0, 0, 0)
	d.eglDestroyContext(d.display, d.readCtx)
	d.eglDestroyContext(d.display, d.context)
	d.eglDestroySurface(d.display, d.readSurf)
	d.eglDestroySurface(d.display, d.surface)
	d.eglTerminate(d.display)
}

var _ ports.GraphicsDevice = (*Device)(nil)
