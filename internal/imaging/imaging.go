// Package imaging re-encodes uploaded section images: shrink to fit a bounding
// box, then write a progressive JPEG without metadata.
package imaging

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/davidbyttow/govips/v2/vips"
)

//go:generate mockgen -source=./imaging.go -destination=../mocks/mock_image_processor.go -package=mocks Processor

const (
	DefaultMaxWidth  = 2000
	DefaultMaxHeight = 2000
	DefaultQuality   = 80
)

// Result is an encoded image and its final dimensions.
type Result struct {
	Data   []byte
	Width  int
	Height int
}

type Processor interface {
	Process(ctx context.Context, data []byte) (*Result, error)
}

// Startup initialises libvips. Call once before the first Process and pair
// with Shutdown.
func Startup() {
	vips.LoggingSettings(func(messageDomain string, level vips.LogLevel, msg string) {
		slog.Debug("vips", "domain", messageDomain, "level", level, "message", msg)
	}, vips.LogLevelWarning)
	vips.Startup(&vips.Config{ConcurrencyLevel: 0})
}

func Shutdown() {
	vips.Shutdown()
}

type VipsProcessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewVipsProcessor() *VipsProcessor {
	return &VipsProcessor{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Quality:   DefaultQuality,
	}
}

func (p *VipsProcessor) Process(ctx context.Context, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vips.DetermineImageType(data) == vips.ImageTypeUnknown {
		return nil, domain.ErrUnsupportedImage
	}

	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}
	defer img.Close()

	width, height := FitWithin(img.Width(), img.Height(), p.MaxWidth, p.MaxHeight)
	if width != img.Width() || height != img.Height() {
		if err := img.ThumbnailWithSize(width, height, vips.InterestingNone, vips.SizeDown); err != nil {
			return nil, fmt.Errorf("resizing image: %w", err)
		}
	}

	out, _, err := img.ExportJpeg(ExportParams(p.Quality))
	if err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return &Result{Data: out, Width: img.Width(), Height: img.Height()}, nil
}

// ExportParams is the JPEG encoding every stored image uses.
func ExportParams(quality int) *vips.JpegExportParams {
	params := vips.NewJpegExportParams()
	params.Quality = quality
	params.Interlace = true
	params.StripMetadata = true
	return params
}

// FitWithin scales width x height down, keeping the aspect ratio, until it
// fits inside maxWidth x maxHeight. Images that already fit are unchanged.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))

	return max(w, 1), max(h, 1)
}
