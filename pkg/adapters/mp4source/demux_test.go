package mp4source

import (
	"bytes"
	"testing"
)

func TestAvccToAnnexB(t *testing.T) {
	nalu1 := []byte{0x65, 0x01, 0x02}
	nalu2 := []byte{0x41, 0x03}
	avcc := []byte{0, 0, 0, 3}
	avcc = append(avcc, nalu1...)
	avcc = append(avcc, 0, 0, 0, 2)
	avcc = append(avcc, nalu2...)

	want := []byte{0, 0, 0, 1}
	want = append(want, nalu1...)
	want = append(want, 0, 0, 0, 1)
	want = append(want, nalu2...)

	if got := avccToAnnexB(avcc); !bytes.Equal(got, want) {
		t.Errorf("avccToAnnexB = %v, want %v", got, want)
	}
}

func TestAvccToAnnexBTruncated(t *testing.T) {
	// Declared NALU length exceeds the remaining data: stop, don't panic.
	avcc := []byte{0, 0, 0, 10, 0x65, 0x01}
	if got := avccToAnnexB(avcc); len(got) != 0 {
		t.Errorf("truncated input produced %v, want nothing", got)
	}

	if got := avccToAnnexB(nil); got != nil {
		t.Errorf("nil input produced %v", got)
	}
}

func TestFrameDataPrependsParameterSetsOnKeyframes(t *testing.T) {
	spsPPS := []byte{0, 0, 0, 1, 0x67, 0, 0, 0, 1, 0x68}
	sample := []byte{0, 0, 0, 1, 0x65}

	key := frameData(spsPPS, sample, true)
	if !bytes.HasPrefix(key, spsPPS) {
		t.Errorf("keyframe data %v does not start with parameter sets", key)
	}

	delta := frameData(spsPPS, sample, false)
	if bytes.HasPrefix(delta, spsPPS) {
		t.Error("delta frame data starts with parameter sets")
	}
}

func TestToMs(t *testing.T) {
	if got := toMs(90000, 90000); got != 1000 {
		t.Errorf("toMs(90000, 90000) = %d, want 1000", got)
	}
	// A zero timescale falls back to milliseconds.
	if got := toMs(500, 0); got != 500 {
		t.Errorf("toMs(500, 0) = %d, want 500", got)
	}
}

func TestFindFFmpegCustomPathMissing(t *testing.T) {
	if _, err := findFFmpeg("/nonexistent/ffmpeg"); err == nil {
		t.Error("expected an error for a missing custom path")
	}
}

func TestDemuxRejectsGarbage(t *testing.T) {
	if _, err := demux(bytes.NewReader([]byte("not an mp4 file"))); err == nil {
		t.Error("expected an error for non-MP4 input")
	}
}
