package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/floostack/transcoder/ffmpeg"
)

// frameQuality is the JPEG qscale used for extracted stills; 2 is
// near-lossless, which the downstream image classifiers want.
const frameQuality = uint32(2)

// VideoStats probes the file at the path provided and returns the
// total frame count and frames-per-second of its video stream.
// When the container does not report nb_frames directly the count
// is derived from the stream duration and frame rate instead.
func VideoStats(config Config, path string) (int, float64, error) {
	metadata, err := ProbeFile(config, path)
	if err != nil {
		return 0, 0, err
	}

	for _, stream := range metadata.GetStreams() {
		if stream.GetCodecType() != "video" {
			continue
		}

		fps := parseFrameRate(stream.GetAvgFrameRate())
		if fps <= 0 {
			return 0, 0, fmt.Errorf("video stream of %s reports no usable frame rate", path)
		}

		totalFrames, _ := strconv.Atoi(stream.GetNbFrames())
		if totalFrames == 0 {
			if duration, err := strconv.ParseFloat(metadata.GetFormat().GetDuration(), 64); err == nil {
				totalFrames = int(duration * fps)
			}
		}

		if totalFrames == 0 {
			return 0, 0, fmt.Errorf("cannot determine frame count of %s", path)
		}

		return totalFrames, fps, nil
	}

	return 0, 0, fmt.Errorf("file %s contains no video stream", path)
}

// ExtractFrame seeks to the given timestamp in the input and writes
// that single frame as a JPEG to outputPath. The seek is explicit
// rather than a sequential decode, so extraction cost does not grow
// with the timestamp.
func ExtractFrame(config Config, inputPath string, outputPath string, atSeconds float64) error {
	seekTime := strconv.FormatFloat(atSeconds, 'f', 3, 64)
	singleFrame := 1
	quality := frameQuality
	skipAudio := true
	overwrite := true

	opts := &ffmpeg.Options{
		SeekTime:  &seekTime,
		Vframes:   &singleFrame,
		Qscale:    &quality,
		SkipAudio: &skipAudio,
		Overwrite: &overwrite,
	}

	return Run(config, inputPath, outputPath, opts)
}

// TranscodeAudio demuxes the audio track from the input and
// re-encodes it with the channel count and sample rate provided,
// discarding any video stream.
func TranscodeAudio(config Config, inputPath string, outputPath string, channels int, sampleRate int) error {
	audioCodec := "libmp3lame"
	skipVideo := true
	overwrite := true

	opts := &ffmpeg.Options{
		AudioCodec:    &audioCodec,
		AudioChannels: &channels,
		AudioRate:     &sampleRate,
		SkipVideo:     &skipVideo,
		Overwrite:     &overwrite,
	}

	return Run(config, inputPath, outputPath, opts)
}

// parseFrameRate converts ffprobe's fractional frame-rate notation
// (e.g. '30000/1001') to a float. Returns 0 when unparseable.
func parseFrameRate(rate string) float64 {
	if num, den, found := strings.Cut(rate, "/"); found {
		numerator, errN := strconv.ParseFloat(num, 64)
		denominator, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || denominator == 0 {
			return 0
		}

		return numerator / denominator
	}

	parsed, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return 0
	}

	return parsed
}
