package media

import "fmt"

// AssetKind discriminates the physical artifacts an extraction
// can produce.
type AssetKind string

const (
	AssetCover AssetKind = "cover"
	AssetFrame AssetKind = "frame"
	AssetImage AssetKind = "image"
	AssetAudio AssetKind = "audio"
	AssetVideo AssetKind = "video"
)

// MediaType describes the overall shape of a piece of content.
type MediaType string

const (
	TypeVideo  MediaType = "video"
	TypeAudio  MediaType = "audio"
	TypeImages MediaType = "images"
)

// ContentRef ties together the raw input a caller provided, the
// canonical URL it resolved to, and the stable content ID parsed
// from the page. It lives for the duration of a single ingestion.
type ContentRef struct {
	RawInput    string
	ResolvedURL string
	ContentID   string
}

// VideoInfo is the structured metadata extracted from a share
// page. It is immutable once parsed; exactly one of
// VideoURL/AudioURL OR a non-empty ImageURLs defines the content
// shape (the orchestrator enforces the exclusivity, not the
// extractor).
type VideoInfo struct {
	ContentID string   `json:"content_id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	VideoURL  string   `json:"video_url,omitempty"`
	AudioURL  string   `json:"audio_url,omitempty"`
	CoverURL  string   `json:"cover_url,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// IsGallery reports whether this content is an image gallery
// rather than a video/audio clip.
func (info *VideoInfo) IsGallery() bool { return len(info.ImageURLs) > 0 }

// IsEmpty reports whether the extraction failed to produce any
// usable metadata.
func (info *VideoInfo) IsEmpty() bool {
	return info.ContentID == "" && info.VideoURL == "" && info.AudioURL == "" && len(info.ImageURLs) == 0
}

// MediaAsset is a single file produced during extraction. Frames
// and gallery images carry an Ordinal which fixes their filename
// (and therefore their cache-relative path) deterministically.
type MediaAsset struct {
	Kind      AssetKind `json:"kind"`
	LocalPath string    `json:"local_path"`
	Ordinal   int       `json:"ordinal,omitempty"`
}

// FrameFilename returns the canonical filename for the sampled
// frame with the given 1-based ordinal.
func FrameFilename(ordinal int) string { return fmt.Sprintf("frame_%03d.jpg", ordinal) }

// ImageFilename returns the canonical filename for the gallery
// image with the given 1-based ordinal.
func ImageFilename(ordinal int) string { return fmt.Sprintf("image_%03d.jpg", ordinal) }

// ExtractionResult is the unit exchanged with downstream
// classifier collaborators. Failure is represented as data
// (Success=false + Error), never as an error value escaping the
// pipeline.
type ExtractionResult struct {
	ContentID  string       `json:"content_id"`
	Info       *VideoInfo   `json:"video_info,omitempty"`
	MediaType  MediaType    `json:"media_type,omitempty"`
	Assets     []MediaAsset `json:"assets"`
	Transcript string       `json:"transcript"`
	Success    bool         `json:"success"`
	Error      string       `json:"error,omitempty"`
	FromCache  bool         `json:"from_cache"`
}

// AssetsOfKind filters the result's assets down to the provided kind.
func (result *ExtractionResult) AssetsOfKind(kind AssetKind) []MediaAsset {
	out := make([]MediaAsset, 0, len(result.Assets))
	for _, asset := range result.Assets {
		if asset.Kind == kind {
			out = append(out, asset)
		}
	}

	return out
}

// HasSignal reports whether at least one classifier-consumable
// signal survived extraction: a transcript, sampled frames,
// gallery images, or a cover image. Partial acquisition failures
// are tolerated as long as some signal remains.
func (result *ExtractionResult) HasSignal() bool {
	if result.Transcript != "" {
		return true
	}

	for _, asset := range result.Assets {
		switch asset.Kind {
		case AssetFrame, AssetImage, AssetCover:
			return true
		}
	}

	return false
}
