package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/clipsift/clipsift/internal/api"
	"github.com/clipsift/clipsift/internal/audio"
	"github.com/clipsift/clipsift/internal/cache"
	"github.com/clipsift/clipsift/internal/download"
	"github.com/clipsift/clipsift/internal/frames"
	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/internal/pipeline"
	"github.com/clipsift/clipsift/internal/resolve"
	"github.com/clipsift/clipsift/internal/scrape"
	"github.com/clipsift/clipsift/internal/transcribe"
	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/google/uuid"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	// IngestionPipeline is the one operation Clipsift's outer
	// surfaces (REST gateway and CLI) consume.
	IngestionPipeline interface {
		Ingest(ctx context.Context, rawText string, outDir string) *media.ExtractionResult
	}
)

// Clipsift represents the top-level object for the service, and is
// responsible for constructing the ingestion pipeline from its
// component stages and running the outer surfaces over it.
type clipsiftImpl struct {
	config   ClipsiftConfig
	pipeline IngestionPipeline
}

func New(config ClipsiftConfig) *clipsiftImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Clipsift services using config: %#v\n", config)

	store, err := cache.New(config.CacheDir())
	if err != nil {
		panic(fmt.Sprintf("failed to construct cache store due to error: %s", err.Error()))
	}

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pipe := pipeline.New(
		config.Pipeline,
		resolve.New(timeout),
		scrape.New(timeout),
		download.New(timeout),
		frames.New(config.Ffmpeg),
		audio.New(config.Ffmpeg),
		transcribe.New(timeout),
		store,
	)

	return &clipsiftImpl{config: config, pipeline: pipe}
}

// Run brings up the REST gateway and blocks until the parent
// context is cancelled or the server fails.
func (clipsift *clipsiftImpl) Run(ctx context.Context) error {
	restConfig := &api.RestConfig{HostAddr: clipsift.config.ApiHostAddr + ":" + clipsift.config.ApiHostPort}
	gateway := api.NewRestGateway(restConfig, clipsift)

	log.Emit(logger.INFO, "Clipsift listening on %s\n", restConfig.HostAddr)
	return gateway.Run(ctx)
}

// IngestContent runs one ingestion through the pipeline, tagging
// the request with a unique ID for log correlation.
func (clipsift *clipsiftImpl) IngestContent(ctx context.Context, rawText string) *media.ExtractionResult {
	requestID := uuid.NewString()
	log.Emit(logger.INFO, "Ingestion request %s accepted (input len %d)\n", requestID, len(rawText))

	startedAt := time.Now()
	result := clipsift.pipeline.Ingest(ctx, rawText, "")

	outcome := "FAILURE"
	if result.Success {
		outcome = "SUCCESS"
	}
	log.Emit(logger.INFO, "Ingestion request %s finished [%s] in %s\n", requestID, outcome, time.Since(startedAt))

	return result
}
