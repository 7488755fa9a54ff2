package pipeline

import (
	"context"
	"path/filepath"

	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/internal/platform"
	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/clipsift/clipsift/pkg/worker"
)

var log = logger.Get("Pipeline")

const (
	coverFilename          = "cover.jpg"
	extractedAudioFilename = "extracted_audio.mp3"
)

type (
	resolver interface {
		Resolve(rawText string) string
	}

	extractor interface {
		Extract(url string) (*media.VideoInfo, error)
	}

	downloader interface {
		Download(ctx context.Context, url string, destination string) bool
		DownloadMedia(ctx context.Context, url string, dir string) (string, media.AssetKind)
	}

	frameSampler interface {
		Sample(videoPath string, outDir string, maxFrames int) []string
	}

	audioExtractor interface {
		Extract(videoPath string, outPath string) bool
	}

	transcriber interface {
		Transcribe(audioPath string) string
	}

	cacheStore interface {
		Lookup(contentID string) (*media.ExtractionResult, error)
		Save(contentID string, result *media.ExtractionResult) error
		EntryDir(contentID string) string
	}
)

// Config tunes a Pipeline. Parallelism bounds the per-ingestion
// fan-out pool (not a global pool); a supervising layer is expected
// to cap concurrent Ingest calls itself.
type Config struct {
	MaxFrames   int `yaml:"max_frames" env:"PIPELINE_MAX_FRAMES" env-default:"5"`
	Parallelism int `yaml:"parallelism" env:"PIPELINE_PARALLELISM" env-default:"3"`
}

// Pipeline composes the resolution, scraping, acquisition and
// transcription stages in to a single ingestion operation per
// content URL. All stage failures are represented as data on the
// returned ExtractionResult; Ingest never returns an error.
type Pipeline struct {
	config Config

	resolver   resolver
	extractor  extractor
	downloader downloader
	sampler    frameSampler
	audio      audioExtractor
	transcribe transcriber
	cache      cacheStore
}

func New(
	config Config,
	resolver resolver,
	extractor extractor,
	downloader downloader,
	sampler frameSampler,
	audio audioExtractor,
	transcribe transcriber,
	cache cacheStore,
) *Pipeline {
	return &Pipeline{
		config:     config,
		resolver:   resolver,
		extractor:  extractor,
		downloader: downloader,
		sampler:    sampler,
		audio:      audio,
		transcribe: transcribe,
		cache:      cache,
	}
}

// Ingest resolves the URL found in rawText, extracts the page's
// media references, acquires the referenced assets with bounded
// parallelism and assembles the normalized content bundle for the
// classifier collaborators.
//
// outDir overrides the working directory for acquired assets; when
// it is empty (the normal case) assets are written straight in to
// the content's cache entry and the result is persisted on success.
// Results produced in to a caller-supplied outDir live outside the
// cache namespace and are not persisted.
func (pipeline *Pipeline) Ingest(ctx context.Context, rawText string, outDir string) *media.ExtractionResult {
	result := &media.ExtractionResult{Assets: []media.MediaAsset{}}

	url := pipeline.resolver.Resolve(rawText)
	if url == "" {
		return failed(result, "no URL found in input")
	}
	if platform.IsShortLink(url) {
		// Redirect resolution soft-failed; the scraper cannot parse
		// a redirector URL so there is no point continuing.
		return failed(result, "cannot resolve short-link")
	}

	info, err := pipeline.extractor.Extract(url)
	if err != nil || info == nil || info.IsEmpty() {
		if err != nil {
			log.Emit(logger.ERROR, "page extraction for %s failed: %s\n", url, err.Error())
		}
		return failed(result, "cannot extract video info")
	}
	result.Info = info

	if info.ContentID == "" {
		return failed(result, "cannot determine content id")
	}
	result.ContentID = info.ContentID

	// Cache lookup strictly precedes any download; there is no
	// speculative fetch-and-check.
	useCache := outDir == ""
	if useCache {
		if cached, err := pipeline.cache.Lookup(info.ContentID); err == nil {
			return cached
		}

		outDir = pipeline.cache.EntryDir(info.ContentID)
	}

	if info.IsGallery() {
		pipeline.ingestGallery(ctx, info, outDir, result)
	} else {
		pipeline.ingestMedia(ctx, info, outDir, result)
	}

	result.Success = result.HasSignal()
	if !result.Success && result.Error == "" {
		result.Error = "no classifier signal survived extraction"
	}

	if result.Success && useCache {
		if err := pipeline.cache.Save(info.ContentID, result); err != nil {
			log.Emit(logger.ERROR, "failed to persist result for %s: %s\n", info.ContentID, err.Error())
		}
	}

	return result
}

// ingestGallery downloads the cover and every gallery image over
// the bounded pool. If an audio/video URL exists alongside the
// gallery it is downloaded and transcribed concurrently with the
// image downloads.
func (pipeline *Pipeline) ingestGallery(ctx context.Context, info *media.VideoInfo, outDir string, result *media.ExtractionResult) {
	result.MediaType = media.TypeImages

	var coverPath string
	imagePaths := make([]string, len(info.ImageURLs))
	var transcript string
	var sideMediaPath string
	var sideMediaKind media.AssetKind

	pool := worker.NewPool(pipeline.config.Parallelism)
	if info.CoverURL != "" {
		coverURL := info.CoverURL
		pool.Push(func() error {
			destination := filepath.Join(outDir, coverFilename)
			if pipeline.downloader.Download(ctx, coverURL, destination) {
				coverPath = destination
			}
			return nil
		})
	}

	for i, imageURL := range info.ImageURLs {
		// Ordinals follow source-list order, independent of which
		// download finishes first.
		ordinal, url := i, imageURL
		pool.Push(func() error {
			destination := filepath.Join(outDir, media.ImageFilename(ordinal+1))
			if pipeline.downloader.Download(ctx, url, destination) {
				imagePaths[ordinal] = destination
			}
			return nil
		})
	}

	if mediaURL := firstNonEmpty(info.AudioURL, info.VideoURL); mediaURL != "" {
		pool.Push(func() error {
			path, kind := pipeline.downloader.DownloadMedia(ctx, mediaURL, outDir)
			if path != "" {
				sideMediaPath, sideMediaKind = path, kind
				transcript = pipeline.transcribeMedia(path, kind, outDir, result)
			}
			return nil
		})
	}
	pool.Run()

	if coverPath != "" {
		result.Assets = append(result.Assets, media.MediaAsset{Kind: media.AssetCover, LocalPath: coverPath})
	}
	for i, path := range imagePaths {
		if path != "" {
			result.Assets = append(result.Assets, media.MediaAsset{Kind: media.AssetImage, LocalPath: path, Ordinal: i + 1})
		}
	}
	if sideMediaPath != "" {
		result.Assets = append(result.Assets, media.MediaAsset{Kind: sideMediaKind, LocalPath: sideMediaPath})
	}
	result.Transcript = transcript
}

// ingestMedia downloads the media file and cover concurrently, then
// runs frame sampling and audio-extraction+transcription (both of
// which depend on the downloaded file) concurrently over a second
// pool. Pure audio content skips sampling and is transcribed
// directly.
func (pipeline *Pipeline) ingestMedia(ctx context.Context, info *media.VideoInfo, outDir string, result *media.ExtractionResult) {
	mediaURL := firstNonEmpty(info.VideoURL, info.AudioURL)

	var mediaPath string
	var mediaKind media.AssetKind
	var coverPath string

	pool := worker.NewPool(2)
	pool.Push(func() error {
		mediaPath, mediaKind = pipeline.downloader.DownloadMedia(ctx, mediaURL, outDir)
		return nil
	})
	if info.CoverURL != "" {
		coverURL := info.CoverURL
		pool.Push(func() error {
			destination := filepath.Join(outDir, coverFilename)
			if pipeline.downloader.Download(ctx, coverURL, destination) {
				coverPath = destination
			}
			return nil
		})
	}
	pool.Run()

	if coverPath != "" {
		result.Assets = append(result.Assets, media.MediaAsset{Kind: media.AssetCover, LocalPath: coverPath})
	}

	if mediaPath == "" {
		log.Emit(logger.WARNING, "media download failed for %s, continuing with cover only\n", info.ContentID)
		result.MediaType = media.TypeVideo
		return
	}
	result.Assets = append(result.Assets, media.MediaAsset{Kind: mediaKind, LocalPath: mediaPath})

	if mediaKind == media.AssetVideo {
		result.MediaType = media.TypeVideo

		var framePaths []string
		var transcript string

		// Both tasks depend on the downloaded file, so they are
		// scheduled only now; nothing is started speculatively.
		dependentPool := worker.NewPool(2)
		dependentPool.Push(func() error {
			framePaths = pipeline.sampler.Sample(mediaPath, outDir, pipeline.config.MaxFrames)
			return nil
		})
		dependentPool.Push(func() error {
			transcript = pipeline.transcribeMedia(mediaPath, media.AssetVideo, outDir, result)
			return nil
		})
		dependentPool.Run()

		for i, path := range framePaths {
			result.Assets = append(result.Assets, media.MediaAsset{Kind: media.AssetFrame, LocalPath: path, Ordinal: i + 1})
		}
		result.Transcript = transcript
	} else {
		result.MediaType = media.TypeAudio
		result.Transcript = pipeline.transcribe.Transcribe(mediaPath)
	}
}

// transcribeMedia produces a transcript for a downloaded media
// file. Video files first have their audio track extracted and
// normalised; the extracted track is recorded as an asset so cache
// validation covers it.
func (pipeline *Pipeline) transcribeMedia(mediaPath string, kind media.AssetKind, outDir string, result *media.ExtractionResult) string {
	if kind == media.AssetAudio {
		return pipeline.transcribe.Transcribe(mediaPath)
	}

	extractedPath := filepath.Join(outDir, extractedAudioFilename)
	if !pipeline.audio.Extract(mediaPath, extractedPath) {
		return ""
	}

	result.Assets = append(result.Assets, media.MediaAsset{Kind: media.AssetAudio, LocalPath: extractedPath})
	return pipeline.transcribe.Transcribe(extractedPath)
}

func failed(result *media.ExtractionResult, message string) *media.ExtractionResult {
	log.Emit(logger.WARNING, "ingestion failed: %s\n", message)
	result.Success = false
	result.Error = message

	return result
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
