package capture

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/ports"
)

// roles returns the current role permutation under the ring lock.
func (r *SurfaceRing) roles() (render, swap, present int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.render, r.swap, r.present
}

// presentTexture returns the texture currently in the present role.
func (r *SurfaceRing) presentTexture() ports.TextureID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaces[r.present].Texture
}

func validPermutation(render, swap, present int) bool {
	return render != swap && swap != present && present != render &&
		render >= 0 && render < 3 && swap >= 0 && swap < 3 && present >= 0 && present < 3
}

func solidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// renderFrame draws a solid color into the current render target and
// publishes it, the way the decoding thread does once per frame.
func renderFrame(t *testing.T, device *mocks.Device, ring *SurfaceRing, c color.RGBA) {
	t.Helper()
	w, h := ring.Size()
	device.BindFramebuffer(ring.RenderTarget())
	if err := device.DrawPixels(solidImage(w, h, c)); err != nil {
		t.Fatalf("DrawPixels failed: %v", err)
	}
	device.BindFramebuffer(ring.Publish())
}

func TestSurfaceRingAcquireBeforeAllocate(t *testing.T) {
	ring := NewSurfaceRing(mocks.NewDevice(), logger.NewNoop())

	if tex := ring.Acquire(); tex != 0 {
		t.Errorf("Acquire before Allocate returned %d, want zero handle", tex)
	}
}

func TestSurfaceRingAllocate(t *testing.T) {
	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())

	ring.Allocate(640, 480)

	if device.TexturesCreated != 3 {
		t.Errorf("expected 3 textures, got %d", device.TexturesCreated)
	}
	if device.FramebuffersCreated != 3 {
		t.Errorf("expected 3 framebuffers, got %d", device.FramebuffersCreated)
	}
	if w, h := ring.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %dx%d, want 640x480", w, h)
	}
	if render, swap, present := ring.roles(); render != 0 || swap != 1 || present != 2 {
		t.Errorf("initial roles = (%d, %d, %d), want (0, 1, 2)", render, swap, present)
	}

	// Surfaces exist, but no frame has completed yet.
	if tex := ring.Acquire(); tex != 0 {
		t.Errorf("Acquire before first Publish returned %d, want zero handle", tex)
	}
}

func TestSurfaceRingPublishThenAcquire(t *testing.T) {
	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())
	ring.Allocate(64, 48)
	device.MakeCurrent(true)

	red := color.RGBA{R: 255, A: 255}
	renderFrame(t, device, ring, red)

	tex := ring.Acquire()
	if tex == 0 {
		t.Fatal("Acquire after Publish returned zero handle")
	}
	img, err := device.ReadTexture(tex)
	if err != nil {
		t.Fatalf("ReadTexture failed: %v", err)
	}
	if got := img.RGBAAt(10, 10); got != red {
		t.Errorf("presented pixel = %v, want %v", got, red)
	}

	// No new frame: the same handle is presented again.
	if again := ring.Acquire(); again != tex {
		t.Errorf("repeat Acquire returned %d, want %d", again, tex)
	}
	if again := ring.Acquire(); again != tex {
		t.Errorf("third Acquire returned %d, want %d", again, tex)
	}
}

func TestSurfaceRingNewestWins(t *testing.T) {
	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())
	ring.Allocate(64, 48)
	device.MakeCurrent(true)

	renderFrame(t, device, ring, color.RGBA{R: 255, A: 255})
	green := color.RGBA{G: 255, A: 255}
	renderFrame(t, device, ring, green)

	// Two frames completed without a read in between: the older one is
	// skipped, never presented.
	img, err := device.ReadTexture(ring.Acquire())
	if err != nil {
		t.Fatalf("ReadTexture failed: %v", err)
	}
	if got := img.RGBAAt(10, 10); got != green {
		t.Errorf("presented pixel = %v, want %v (newest frame)", got, green)
	}
}

func TestSurfaceRingReallocate(t *testing.T) {
	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())
	ring.Allocate(640, 480)
	device.MakeCurrent(true)

	renderFrame(t, device, ring, color.RGBA{R: 255, A: 255})
	old := ring.Acquire()

	ring.Allocate(1280, 720)

	if device.TexturesDeleted != 3 {
		t.Errorf("expected 3 old textures deleted, got %d", device.TexturesDeleted)
	}
	if device.TextureCount() != 3 {
		t.Errorf("expected 3 live textures after realloc, got %d", device.TextureCount())
	}
	if _, _, ok := device.TextureSize(old); ok {
		t.Errorf("pre-realloc texture %d still live", old)
	}

	// The stale handle must never come back out.
	if tex := ring.Acquire(); tex != 0 {
		t.Errorf("Acquire right after realloc returned %d, want zero handle", tex)
	}

	renderFrame(t, device, ring, color.RGBA{B: 255, A: 255})
	tex := ring.Acquire()
	if w, h, ok := device.TextureSize(tex); !ok || w != 1280 || h != 720 {
		t.Errorf("presented texture size = %dx%d (ok=%t), want 1280x720", w, h, ok)
	}
}

func TestSurfaceRingRelease(t *testing.T) {
	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())
	ring.Allocate(64, 48)
	device.MakeCurrent(true)
	renderFrame(t, device, ring, color.RGBA{R: 255, A: 255})

	ring.Release()

	if device.TextureCount() != 0 {
		t.Errorf("expected 0 live textures after Release, got %d", device.TextureCount())
	}
	if device.FramebuffersDeleted != 3 {
		t.Errorf("expected 3 framebuffers deleted, got %d", device.FramebuffersDeleted)
	}
	if tex := ring.Acquire(); tex != 0 {
		t.Errorf("Acquire after Release returned %d, want zero handle", tex)
	}

	// Release with nothing allocated is a no-op.
	ring.Release()
	if device.FramebuffersDeleted != 3 {
		t.Errorf("double Release deleted framebuffers again: %d", device.FramebuffersDeleted)
	}
}

func TestSurfaceRingAllocateFatalOnIncompleteTarget(t *testing.T) {
	device := mocks.NewDevice()
	device.ValidateFramebufferFunc = func(fb ports.FramebufferID) error {
		return ports.ErrIncompleteTarget
	}
	ring := NewSurfaceRing(device, logger.NewNoop())

	exited := false
	orig := exitFunc
	exitFunc = func(code int) {
		exited = true
		panic("exit")
	}
	defer func() { exitFunc = orig }()

	func() {
		defer func() { recover() }()
		ring.Allocate(640, 480)
	}()

	if !exited {
		t.Error("Allocate with an incomplete render target did not exit")
	}
}

// Publisher and acquirer hammer the ring from separate goroutines; the role
// permutation must hold after every operation, and the acquired texture must
// always be the one in the present role, never the render slot.
func TestSurfaceRingConcurrentPublishAcquire(t *testing.T) {
	const iterations = 10000

	device := mocks.NewDevice()
	ring := NewSurfaceRing(device, logger.NewNoop())
	ring.Allocate(64, 48)

	var wg sync.WaitGroup
	var publishViolations, acquireViolations int

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			ring.Publish()
			if render, swap, present := ring.roles(); !validPermutation(render, swap, present) {
				publishViolations++
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			tex := ring.Acquire()
			render, swap, present := ring.roles()
			if !validPermutation(render, swap, present) {
				acquireViolations++
				continue
			}
			// Only the acquirer moves the present role, so the handle
			// it got still sits in the present slot here.
			if tex != 0 && tex != ring.presentTexture() {
				acquireViolations++
			}
		}
	}()
	wg.Wait()

	if publishViolations != 0 {
		t.Errorf("%d role violations observed after Publish", publishViolations)
	}
	if acquireViolations != 0 {
		t.Errorf("%d role violations observed after Acquire", acquireViolations)
	}
}
