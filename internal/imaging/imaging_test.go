package imaging

import (
	"context"
	"errors"
	"testing"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"landscape shrinks to width", 4000, 3000, 2000, 1500},
		{"portrait shrinks to height", 3000, 6000, 1000, 2000},
		{"square", 2500, 2500, 2000, 2000},
		{"exact bounds kept", 2000, 2000, 2000, 2000},
		{"small image never enlarged", 800, 600, 800, 600},
		{"one side over", 2400, 1000, 2000, 833},
		{"panorama keeps a pixel", 100000, 10, 2000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.width, tt.height, DefaultMaxWidth, DefaultMaxHeight)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.LessOrEqual(t, w, DefaultMaxWidth)
			assert.LessOrEqual(t, h, DefaultMaxHeight)
		})
	}
}

func TestExportParams(t *testing.T) {
	params := ExportParams(DefaultQuality)

	assert.Equal(t, 80, params.Quality)
	assert.True(t, params.Interlace)
	assert.True(t, params.StripMetadata)
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := NewVipsProcessor().Process(context.Background(), []byte("%PDF-1.7 not an image"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedImage))
}
