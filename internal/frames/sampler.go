package frames

import (
	"path/filepath"

	"github.com/clipsift/clipsift/internal/ffmpeg"
	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("FrameSampler")

type (
	statsFn   func(config ffmpeg.Config, path string) (int, float64, error)
	extractFn func(config ffmpeg.Config, inputPath string, outputPath string, atSeconds float64) error
)

// Indirection over the ffmpeg commands so tests can simulate
// per-frame extraction failures without a real binary.
var (
	videoStats   statsFn   = ffmpeg.VideoStats
	extractFrame extractFn = ffmpeg.ExtractFrame
)

// Sampler extracts a bounded number of representative still frames
// from a downloaded video.
type Sampler struct {
	config ffmpeg.Config
}

func New(config ffmpeg.Config) *Sampler {
	return &Sampler{config: config}
}

// Sample writes up to maxFrames JPEG stills from the video at
// videoPath in to outDir, named frame_001.jpg onwards. Frame indices
// are spaced evenly across the whole duration so temporal coverage
// does not depend on video length. A failed extraction for one index
// is skipped without aborting the remaining samples; filenames are
// numbered by frames actually written, so the sequence stays gapless
// and each ordinal keeps naming its file. The returned slice holds
// the written paths.
func (sampler *Sampler) Sample(videoPath string, outDir string, maxFrames int) []string {
	totalFrames, fps, err := videoStats(sampler.config, videoPath)
	if err != nil {
		log.Emit(logger.ERROR, "cannot sample %s: %s\n", videoPath, err.Error())
		return nil
	}

	indices := sampleIndices(totalFrames, maxFrames)
	log.Emit(logger.DEBUG, "sampling %d of %d frames from %s (%.2f fps)\n", len(indices), totalFrames, videoPath, fps)

	written := make([]string, 0, len(indices))
	for _, frameIndex := range indices {
		outPath := filepath.Join(outDir, media.FrameFilename(len(written)+1))
		atSeconds := float64(frameIndex) / fps

		if err := extractFrame(sampler.config, videoPath, outPath, atSeconds); err != nil {
			log.Emit(logger.WARNING, "failed to extract frame at index %d of %s: %s\n", frameIndex, videoPath, err.Error())
			continue
		}

		written = append(written, outPath)
	}

	return written
}

// sampleIndices computes which frame indices to extract. When the
// video holds fewer frames than requested every frame is sampled;
// otherwise maxFrames indices are spread evenly across the full
// duration (i*total/max), which guarantees temporal coverage instead
// of clustering samples at the start.
func sampleIndices(totalFrames int, maxFrames int) []int {
	if totalFrames <= 0 || maxFrames <= 0 {
		return nil
	}

	if totalFrames <= maxFrames {
		indices := make([]int, totalFrames)
		for i := range indices {
			indices[i] = i
		}

		return indices
	}

	indices := make([]int, maxFrames)
	for i := range indices {
		indices[i] = i * totalFrames / maxFrames
	}

	return indices
}
