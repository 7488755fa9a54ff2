package frames

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/clipsift/clipsift/internal/ffmpeg"
	"github.com/stretchr/testify/assert"
)

func TestSampleIndices_FewerFramesThanRequested(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, sampleIndices(3, 5))
}

func TestSampleIndices_EvenSpacing(t *testing.T) {
	tests := []struct {
		summary     string
		totalFrames int
		maxFrames   int
		want        []int
	}{
		{"exact multiple", 100, 5, []int{0, 20, 40, 60, 80}},
		{"non multiple rounds down", 99, 4, []int{0, 24, 49, 74}},
		{"single frame requested", 100, 1, []int{0}},
		{"requested equals total", 4, 4, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, sampleIndices(tt.totalFrames, tt.maxFrames))
		})
	}
}

func TestSampleIndices_Deterministic(t *testing.T) {
	first := sampleIndices(1234, 5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, sampleIndices(1234, 5))
	}
}

func TestSampleIndices_NoFrames(t *testing.T) {
	assert.Empty(t, sampleIndices(0, 5))
}

func TestSample_FailedFrameKeepsFilenamesSequential(t *testing.T) {
	defer func(stats statsFn, extract extractFn) {
		videoStats, extractFrame = stats, extract
	}(videoStats, extractFrame)

	videoStats = func(config ffmpeg.Config, path string) (int, float64, error) {
		return 300, 30, nil
	}

	// Fail the second of three extractions; the survivors must be
	// numbered 001 and 002 with no gap where the failure happened.
	calls := 0
	extractFrame = func(config ffmpeg.Config, inputPath string, outputPath string, atSeconds float64) error {
		calls++
		if calls == 2 {
			return errors.New("seek failed")
		}
		return nil
	}

	outDir := t.TempDir()
	written := New(ffmpeg.Config{}).Sample("video.mp4", outDir, 3)

	assert.Equal(t, []string{
		filepath.Join(outDir, "frame_001.jpg"),
		filepath.Join(outDir, "frame_002.jpg"),
	}, written)
}

func TestSample_ProbeFailureReturnsNothing(t *testing.T) {
	defer func(stats statsFn, extract extractFn) {
		videoStats, extractFrame = stats, extract
	}(videoStats, extractFrame)

	videoStats = func(config ffmpeg.Config, path string) (int, float64, error) {
		return 0, 0, errors.New("no video stream")
	}
	extractFrame = func(config ffmpeg.Config, inputPath string, outputPath string, atSeconds float64) error {
		t.Fatal("no extraction should be attempted when the probe fails")
		return nil
	}

	assert.Empty(t, New(ffmpeg.Config{}).Sample("video.mp4", t.TempDir(), 3))
}
