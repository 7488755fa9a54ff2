package audio

import (
	"os"

	"github.com/clipsift/clipsift/internal/ffmpeg"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("AudioExtract")

const (
	// Canonical format the transcription providers require; they
	// silently degrade on mismatched input, so every source is
	// re-encoded rather than remuxed.
	canonicalChannels   = 1
	canonicalSampleRate = 16000

	// minOutputBytes is the plausibility floor for the re-encoded
	// track; a valid audio file cannot be only a few hundred bytes.
	minOutputBytes = 1024
)

// Extractor demuxes and normalises the audio track of a downloaded
// media file in to the canonical format expected downstream.
type Extractor struct {
	config ffmpeg.Config
}

func New(config ffmpeg.Config) *Extractor {
	return &Extractor{config: config}
}

// Extract re-encodes the audio track of videoPath to outPath as
// mono 16kHz, regardless of the source format. Returns false when
// the track cannot be extracted or the output fails the minimum
// size floor, in which case the output file is discarded.
func (extractor *Extractor) Extract(videoPath string, outPath string) bool {
	if err := ffmpeg.TranscodeAudio(extractor.config, videoPath, outPath, canonicalChannels, canonicalSampleRate); err != nil {
		log.Emit(logger.ERROR, "audio extraction of %s failed: %s\n", videoPath, err.Error())
		return false
	}

	if !OutputMeetsFloor(outPath) {
		log.Emit(logger.WARNING, "extracted audio %s is below the size floor, discarding\n", outPath)
		os.Remove(outPath)
		return false
	}

	return true
}

// OutputMeetsFloor reports whether the file at the path provided
// exists and exceeds the minimum plausible size for real audio.
func OutputMeetsFloor(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Size() >= minOutputBytes
}
