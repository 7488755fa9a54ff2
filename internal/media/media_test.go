package media_test

import (
	"testing"

	"github.com/clipsift/clipsift/internal/media"
	"github.com/stretchr/testify/assert"
)

func TestHasSignal(t *testing.T) {
	tests := []struct {
		summary string
		result  media.ExtractionResult
		want    bool
	}{
		{"nothing acquired", media.ExtractionResult{}, false},
		{"transcript only", media.ExtractionResult{Transcript: "words"}, true},
		{"cover only", media.ExtractionResult{Assets: []media.MediaAsset{{Kind: media.AssetCover}}}, true},
		{"frame only", media.ExtractionResult{Assets: []media.MediaAsset{{Kind: media.AssetFrame}}}, true},
		{"image only", media.ExtractionResult{Assets: []media.MediaAsset{{Kind: media.AssetImage}}}, true},
		{"raw media is not a signal", media.ExtractionResult{Assets: []media.MediaAsset{{Kind: media.AssetVideo}, {Kind: media.AssetAudio}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.HasSignal())
		})
	}
}

func TestOrdinalFilenames(t *testing.T) {
	assert.Equal(t, "frame_001.jpg", media.FrameFilename(1))
	assert.Equal(t, "frame_012.jpg", media.FrameFilename(12))
	assert.Equal(t, "image_100.jpg", media.ImageFilename(100))
}

func TestVideoInfo_Shape(t *testing.T) {
	gallery := media.VideoInfo{ContentID: "1", ImageURLs: []string{"a"}}
	assert.True(t, gallery.IsGallery())
	assert.False(t, gallery.IsEmpty())

	video := media.VideoInfo{ContentID: "1", VideoURL: "x"}
	assert.False(t, video.IsGallery())

	assert.True(t, (&media.VideoInfo{}).IsEmpty())
}
