package ingests

import (
	"context"
	"net/http"

	"github.com/clipsift/clipsift/internal/media"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	// IngestRequest is the payload accepted by the ingest endpoint:
	// free-form share text, from which a content URL is resolved.
	IngestRequest struct {
		Content string `json:"content" validate:"required,min=1"`
	}

	// AssetDto describes one acquired asset within a result.
	AssetDto struct {
		Kind    string `json:"kind"`
		Path    string `json:"path"`
		Ordinal int    `json:"ordinal,omitempty"`
	}

	// ResultDto is the extraction payload nested inside the
	// response envelope.
	ResultDto struct {
		ContentID  string     `json:"content_id"`
		MediaType  string     `json:"media_type"`
		Title      string     `json:"title,omitempty"`
		Author     string     `json:"author,omitempty"`
		Transcript string     `json:"transcript,omitempty"`
		Assets     []AssetDto `json:"assets"`
		Error      string     `json:"error,omitempty"`
	}

	// Envelope is the uniform response shape for the ingest
	// endpoint; failures are reported inside it with a 200 status
	// rather than as HTTP errors.
	Envelope struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		Data    *ResultDto `json:"data,omitempty"`
		VideoID string     `json:"video_id,omitempty"`
		Cached  bool       `json:"cached"`
	}

	// Service is where this controller sends its work, typically
	// the top-level Clipsift service.
	Service interface {
		IngestContent(ctx context.Context, rawText string) *media.ExtractionResult
	}

	// Ingests is the struct which is responsible for defining the
	// routes for this controller.
	Ingests struct {
		validate *validator.Validate
		service  Service
	}
)

func New(service Service) *Ingests {
	return &Ingests{validate: validator.New(), service: service}
}

// SetRoutes accepts the Echo group for the ingest endpoint
// and sets the routes on it.
func (controller *Ingests) SetRoutes(eg *echo.Group) {
	eg.POST("/", controller.create)
}

// create accepts the share text, runs it through the ingestion
// pipeline and returns the enveloped result. Pipeline failures are
// data, not HTTP errors; only malformed requests produce a 4xx.
func (controller *Ingests) create(ctx echo.Context) error {
	var request IngestRequest
	if err := ctx.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request body is not valid JSON")
	}
	if err := controller.validate.Struct(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "content text is required")
	}

	result := controller.service.IngestContent(ctx.Request().Context(), request.Content)

	return ctx.JSON(http.StatusOK, newEnvelope(result))
}

func newEnvelope(result *media.ExtractionResult) *Envelope {
	envelope := &Envelope{
		Success: result.Success,
		VideoID: result.ContentID,
		Cached:  result.FromCache,
	}

	if result.Success {
		envelope.Message = "ok"
		envelope.Data = newResultDto(result)
	} else {
		envelope.Message = result.Error
	}

	return envelope
}

func newResultDto(result *media.ExtractionResult) *ResultDto {
	dto := &ResultDto{
		ContentID:  result.ContentID,
		MediaType:  string(result.MediaType),
		Transcript: result.Transcript,
		Assets:     make([]AssetDto, len(result.Assets)),
		Error:      result.Error,
	}
	if result.Info != nil {
		dto.Title = result.Info.Title
		dto.Author = result.Info.Author
	}

	for k, asset := range result.Assets {
		dto.Assets[k] = AssetDto{Kind: string(asset.Kind), Path: asset.LocalPath, Ordinal: asset.Ordinal}
	}

	return dto
}
