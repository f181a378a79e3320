package mp4source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// ErrFFmpegNotFound means no usable ffmpeg binary could be located.
var ErrFFmpegNotFound = errors.New("mp4source: ffmpeg not found")

// frameDecoder decodes single Annex B H.264 chunks through an external
// ffmpeg process. Slow but dependency-free and portable.
type frameDecoder struct {
	mu         sync.Mutex
	ffmpegPath string
}

func newFrameDecoder(customPath string) (*frameDecoder, error) {
	path, err := findFFmpeg(customPath)
	if err != nil {
		return nil, err
	}
	return &frameDecoder{ffmpegPath: path}, nil
}

// findFFmpeg searches customPath, then PATH, then common install locations.
func findFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s", ErrFFmpegNotFound, customPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// Decode decodes one Annex B chunk into an image. Returns nil without an
// error when ffmpeg produced no picture (the decoder needed more input).
func (d *frameDecoder) Decode(annexB []byte) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(annexB) == 0 {
		return nil, fmt.Errorf("mp4source: empty frame data")
	}

	inputFile, err := os.CreateTemp("", "framecast_*.h264")
	if err != nil {
		return nil, fmt.Errorf("failed to create input temp file: %w", err)
	}
	inputPath := inputFile.Name()
	defer os.Remove(inputPath)
	if _, err := inputFile.Write(annexB); err != nil {
		inputFile.Close()
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	inputFile.Close()

	outputFile, err := os.CreateTemp("", "framecast_*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	outputPath := outputFile.Name()
	outputFile.Close()
	defer os.Remove(outputPath)

	var stderr bytes.Buffer
	cmd := exec.Command(d.ffmpegPath,
		"-y",
		"-f", "h264",
		"-i", inputPath,
		"-frames:v", "1",
		"-f", "image2",
		outputPath,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w\nstderr: %s", err, stderr.String())
	}

	imgFile, err := os.Open(outputPath)
	if err != nil {
		// ffmpeg exits zero on an empty decode; treat as "no picture".
		return nil, nil
	}
	defer imgFile.Close()

	info, err := imgFile.Stat()
	if err != nil || info.Size() == 0 {
		return nil, nil
	}

	img, err := png.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
