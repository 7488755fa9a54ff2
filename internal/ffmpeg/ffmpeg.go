package ffmpeg

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
)

var log = logger.Get("FFmpeg")

// Config points the pipeline at the host's ffmpeg/ffprobe binaries.
// Empty paths fall back to whatever is on $PATH.
type Config struct {
	FfmpegBinPath  string `yaml:"ffmpeg_binary" env:"FFMPEG_BINARY" env-default:"ffmpeg"`
	FfprobeBinPath string `yaml:"ffprobe_binary" env:"FFPROBE_BINARY" env-default:"ffprobe"`
}

// ProbeFile extracts container/stream metadata from the file at the
// path provided using ffprobe.
func ProbeFile(config Config, path string) (transcoder.Metadata, error) {
	cfg := ffmpeg.Config{
		FfmpegBinPath:  config.FfmpegBinPath,
		FfprobeBinPath: config.FfprobeBinPath,
	}

	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		return nil, errors.New("failed to extract file metadata using ffprobe: " + err.Error())
	}

	return metadata, nil
}

// Run executes a single ffmpeg command from inputPath to outputPath
// using the options provided, blocking until the command completes.
// Intermediate directories for the output are created as needed.
func Run(config Config, inputPath string, outputPath string, opts *ffmpeg.Options) error {
	ffmpegCfg := &ffmpeg.Config{
		ProgressEnabled: true,
		FfmpegBinPath:   config.FfmpegBinPath,
		FfprobeBinPath:  config.FfprobeBinPath,
	}

	os.MkdirAll(filepath.Dir(outputPath), os.ModeDir|os.ModePerm)

	progressChannel, err := ffmpeg.
		New(ffmpegCfg).
		Input(inputPath).
		Output(outputPath).
		Start(opts)
	if err != nil {
		return parseFfmpegError(err)
	}

	// Drain until ffmpeg closes the channel; Run is synchronous.
	for prog := range progressChannel {
		log.Emit(logger.VERBOSE, "progress for %s: %v\n", outputPath, prog)
	}

	return nil
}

// parseFfmpegError tries to pick the relevant message out of the huge
// output log ffmpeg attaches to its errors; most of it describes how
// the binary was compiled and is useless to us.
func parseFfmpegError(err error) error {
	messageMatcher := regexp.MustCompile(`(?s)message: ({.*})`)
	groups := messageMatcher.FindStringSubmatch(err.Error())
	if len(groups) == 0 {
		return err
	}

	var out map[string]interface{}
	if jsonErr := json.Unmarshal([]byte(groups[1]), &out); jsonErr != nil {
		return errors.New(groups[1])
	}

	if ffmpegException, ok := out["error"].(map[string]interface{}); ok {
		if message, ok := ffmpegException["string"].(string); ok {
			return errors.New(message)
		}
	}

	return errors.New(groups[1])
}
