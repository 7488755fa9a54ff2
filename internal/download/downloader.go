package download

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/internal/platform"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("Downloader")

// chunkSize is the fixed buffer used when streaming response bodies
// to disk; media files must never be buffered whole in memory.
const chunkSize = 256 * 1024

// Downloader streams arbitrary remote files to local storage. All
// failures are absorbed at this boundary: callers receive a boolean
// and the cause is logged here.
type Downloader struct {
	client *http.Client
}

func New(timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// Download streams the file at the URL provided to the destination
// path, creating intermediate directories as needed. It returns
// false on any transport error, non-2xx status, or zero-byte result.
func (downloader *Downloader) Download(ctx context.Context, fileURL string, destination string) bool {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModeDir|os.ModePerm); err != nil {
		log.Emit(logger.ERROR, "failed to create directory for %s: %s\n", destination, err.Error())
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		log.Emit(logger.ERROR, "illegal download URL %s: %s\n", fileURL, err.Error())
		return false
	}
	platform.ApplyBrowserHeaders(req)

	resp, err := downloader.client.Do(req)
	if err != nil {
		log.Emit(logger.ERROR, "download of %s failed: %s\n", fileURL, err.Error())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Emit(logger.ERROR, "download of %s failed: HTTP %d\n", fileURL, resp.StatusCode)
		return false
	}

	outFile, err := os.Create(destination)
	if err != nil {
		log.Emit(logger.ERROR, "failed to create %s: %s\n", destination, err.Error())
		return false
	}
	defer outFile.Close()

	written, err := io.CopyBuffer(outFile, resp.Body, make([]byte, chunkSize))
	if err != nil {
		log.Emit(logger.ERROR, "streaming of %s to %s aborted: %s\n", fileURL, destination, err.Error())
		os.Remove(destination)
		return false
	}

	if written == 0 {
		log.Emit(logger.WARNING, "download of %s produced an empty file, discarding\n", fileURL)
		os.Remove(destination)
		return false
	}

	log.Emit(logger.DEBUG, "downloaded %s (%d bytes) to %s\n", fileURL, written, destination)
	return true
}

// DownloadMedia downloads a media file in to the directory provided,
// classifying it as video or audio from the URL's file-extension
// hints. The platform's compact audio/video container is ambiguous
// by name alone, so unknown extensions default to video. Returns the
// local path and the classified kind, or "" on failure.
func (downloader *Downloader) DownloadMedia(ctx context.Context, mediaURL string, dir string) (string, media.AssetKind) {
	filename, kind := classifyMediaURL(mediaURL)

	destination := filepath.Join(dir, filename)
	if ok := downloader.Download(ctx, mediaURL, destination); !ok {
		return "", kind
	}

	return destination, kind
}

func classifyMediaURL(mediaURL string) (string, media.AssetKind) {
	ext := ""
	if parsed, err := url.Parse(mediaURL); err == nil {
		ext = path.Ext(parsed.Path)
	}

	switch ext {
	case ".mp3":
		return "audio.mp3", media.AssetAudio
	case ".m4a":
		return "video.m4a", media.AssetVideo
	default:
		return "video.mp4", media.AssetVideo
	}
}
