package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/capture"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/ports"
)

// fakeOutput records the callback sequence the engine drives.
type fakeOutput struct {
	setupOK  bool
	updateOK bool
	attachOK bool
	calls    []string
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{setupOK: true, updateOK: true, attachOK: true}
}

func (f *fakeOutput) OnSetup(cfg ports.DeviceConfig) bool {
	f.calls = append(f.calls, "setup")
	return f.setupOK
}

func (f *fakeOutput) OnUpdateOutput(cfg ports.RenderConfig) (ports.OutputConfig, bool) {
	f.calls = append(f.calls, fmt.Sprintf("update %dx%d", cfg.Width, cfg.Height))
	return ports.OutputConfig{}, f.updateOK
}

func (f *fakeOutput) OnSwap() {
	f.calls = append(f.calls, "swap")
}

func (f *fakeOutput) OnMakeCurrent(enter bool) bool {
	f.calls = append(f.calls, fmt.Sprintf("current %t", enter))
	if enter {
		return f.attachOK
	}
	return true
}

func (f *fakeOutput) OnGetProcAddress(name string) uintptr { return 0 }

func (f *fakeOutput) OnCleanup() {
	f.calls = append(f.calls, "cleanup")
}

// frameSource returns a mock source delivering the given frames.
func frameSource(frames ...ports.VideoFrame) *mocks.Source {
	return &mocks.Source{
		FramesFunc: func(ctx context.Context) (<-chan ports.VideoFrame, error) {
			ch := make(chan ports.VideoFrame, len(frames))
			for _, f := range frames {
				ch <- f
			}
			close(ch)
			return ch, nil
		},
	}
}

func TestEnginePlayCallbackSequence(t *testing.T) {
	out := newFakeOutput()
	source := frameSource(
		mocks.SolidFrame(64, 48, 255, 0, 0, 0),
		mocks.SolidFrame(64, 48, 0, 255, 0, 33),
	)
	eng := New(source, out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})

	stats, err := eng.Play(context.Background(), "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if stats.FramesDecoded != 2 || stats.FramesPublished != 2 {
		t.Errorf("stats = %d decoded / %d published, want 2/2", stats.FramesDecoded, stats.FramesPublished)
	}
	if stats.Width != 64 || stats.Height != 48 {
		t.Errorf("stats dimensions = %dx%d, want 64x48", stats.Width, stats.Height)
	}
	if !source.Closed {
		t.Error("source was not closed")
	}

	want := []string{
		"setup",
		"current true",
		"update 64x48",
		"swap",
		"swap",
		"cleanup",
		"current false",
	}
	if len(out.calls) != len(want) {
		t.Fatalf("callback sequence = %v, want %v", out.calls, want)
	}
	for i := range want {
		if out.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, out.calls[i], want[i])
		}
	}
}

func TestEnginePlayMidStreamResize(t *testing.T) {
	out := newFakeOutput()
	source := frameSource(
		mocks.SolidFrame(640, 480, 255, 0, 0, 0),
		mocks.SolidFrame(1280, 720, 0, 255, 0, 33),
		mocks.SolidFrame(1280, 720, 0, 0, 255, 66),
	)
	eng := New(source, out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})

	stats, err := eng.Play(context.Background(), "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if stats.Width != 1280 || stats.Height != 720 {
		t.Errorf("final dimensions = %dx%d, want 1280x720", stats.Width, stats.Height)
	}

	var updates []string
	for _, c := range out.calls {
		if len(c) > 6 && c[:6] == "update" {
			updates = append(updates, c)
		}
	}
	if len(updates) != 2 || updates[0] != "update 640x480" || updates[1] != "update 1280x720" {
		t.Errorf("updates = %v, want one per dimension change", updates)
	}
}

func TestEnginePlayRejections(t *testing.T) {
	source := func() *mocks.Source {
		return frameSource(mocks.SolidFrame(64, 48, 255, 0, 0, 0))
	}

	out := newFakeOutput()
	out.setupOK = false
	eng := New(source(), out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})
	if _, err := eng.Play(context.Background(), "clip.mp4"); !errors.Is(err, ErrSetupRejected) {
		t.Errorf("setup rejection: err = %v, want ErrSetupRejected", err)
	}

	out = newFakeOutput()
	out.attachOK = false
	eng = New(source(), out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})
	if _, err := eng.Play(context.Background(), "clip.mp4"); !errors.Is(err, ErrContextAttach) {
		t.Errorf("attach failure: err = %v, want ErrContextAttach", err)
	}

	out = newFakeOutput()
	out.updateOK = false
	eng = New(source(), out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})
	if _, err := eng.Play(context.Background(), "clip.mp4"); !errors.Is(err, ErrOutputRejected) {
		t.Errorf("output rejection: err = %v, want ErrOutputRejected", err)
	}
}

func TestEnginePlayOpenError(t *testing.T) {
	source := &mocks.Source{
		OpenFunc: func(path string) (*ports.MediaInfo, error) {
			return nil, errors.New("no such file")
		},
	}
	eng := New(source, newFakeOutput(), mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})

	if _, err := eng.Play(context.Background(), "missing.mp4"); err == nil {
		t.Error("expected an error for an unopenable source")
	}
}

func TestEnginePlayCancelled(t *testing.T) {
	out := newFakeOutput()
	source := frameSource(
		mocks.SolidFrame(64, 48, 255, 0, 0, 0),
		mocks.SolidFrame(64, 48, 0, 255, 0, 33),
	)
	eng := New(source, out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Play(ctx, "clip.mp4")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	// Teardown still runs on the cancel path.
	if out.calls[len(out.calls)-1] != "current false" || out.calls[len(out.calls)-2] != "cleanup" {
		t.Errorf("missing teardown after cancel: %v", out.calls)
	}
}

// Playing through a real capture sink: frames land in device textures and
// the newest one is available to the display side mid-run.
func TestEnginePlayIntoCaptureSink(t *testing.T) {
	device := mocks.NewDevice()
	sink := capture.New(device, logger.NewNoop())
	source := frameSource(
		mocks.SolidFrame(64, 48, 255, 0, 0, 0),
		mocks.SolidFrame(64, 48, 0, 255, 0, 33),
		mocks.SolidFrame(64, 48, 0, 0, 255, 66),
	)
	eng := New(source, sink, device, mocks.NewFileSystem(), logger.NewNoop(), Options{})

	stats, err := eng.Play(context.Background(), "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if stats.FramesPublished != 3 {
		t.Errorf("published %d frames, want 3", stats.FramesPublished)
	}
	if device.DrawCalls != 3 {
		t.Errorf("device saw %d draw calls, want 3", device.DrawCalls)
	}
	// Cleanup already ran: all surfaces are gone and the provider is back
	// to the zero handle.
	if device.TextureCount() != 0 {
		t.Errorf("%d textures leaked after playback", device.TextureCount())
	}
	if tex := sink.GetNextFrame(); tex != 0 {
		t.Errorf("GetNextFrame after playback returned %d, want zero handle", tex)
	}
}

func TestEnginePlayRealTimePacing(t *testing.T) {
	out := newFakeOutput()
	source := frameSource(
		mocks.SolidFrame(64, 48, 255, 0, 0, 0),
		mocks.SolidFrame(64, 48, 0, 255, 0, 120),
	)
	eng := New(source, out, mocks.NewDevice(), mocks.NewFileSystem(), logger.NewNoop(),
		Options{RealTime: true})

	start := time.Now()
	if _, err := eng.Play(context.Background(), "clip.mp4"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("playback finished in %v, want pacing to hold the 120 ms frame", elapsed)
	}
}

func TestEnginePlayPlaylistShuffleSeeded(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/videos/list.m3u", []byte("clip1.mp4\nclip2.mp4\nclip3.mp4\n"))

	opened := func(seed int64) string {
		source := frameSource()
		eng := New(source, newFakeOutput(), mocks.NewDevice(), fs, logger.NewNoop(),
			Options{Shuffle: true, Seed: seed})
		if _, err := eng.Play(context.Background(), "/videos/list.m3u"); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		return source.OpenedPath
	}

	first := opened(7)
	if again := opened(7); again != first {
		t.Errorf("same seed opened %s then %s", first, again)
	}
}
