package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clipsift/clipsift/internal/audio"
	"github.com/stretchr/testify/assert"
)

func TestOutputMeetsFloor(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		summary string
		size    int
		want    bool
	}{
		{"empty file", 0, false},
		{"just below floor", 1023, false},
		{"exactly at floor", 1024, true},
		{"well above floor", 64 * 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			path := filepath.Join(dir, tt.summary+".mp3")
			assert.Nil(t, os.WriteFile(path, make([]byte, tt.size), os.ModePerm))
			assert.Equal(t, tt.want, audio.OutputMeetsFloor(path))
		})
	}
}

func TestOutputMeetsFloor_MissingFile(t *testing.T) {
	assert.False(t, audio.OutputMeetsFloor(filepath.Join(t.TempDir(), "nope.mp3")))
}
