package thumb

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoding for source images

	"github.com/listinghub/property-media/internal/media"
)

// qualityFloor is the lowest encode quality tried before giving up on the
// byte-size ceiling.
const qualityFloor = 0.3

// ImageGenerator downscales still images and re-encodes them as WebP.
type ImageGenerator struct {
	spec Spec
}

func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{spec: ImageSpec}
}

func (g *ImageGenerator) Generate(ctx context.Context, srcPath, dstPath string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, generationError("context", err)
	}

	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return Output{}, generationError("decode", err)
	}
	srcBounds := src.Bounds()

	fitted := imaging.Fit(src, g.spec.MaxWidth, g.spec.MaxHeight, imaging.Lanczos)

	size, err := encodeWebP(fitted, g.spec, dstPath)
	if err != nil {
		return Output{}, err
	}

	b := fitted.Bounds()
	return Output{
		Path:         dstPath,
		Width:        b.Dx(),
		Height:       b.Dy(),
		SourceWidth:  srcBounds.Dx(),
		SourceHeight: srcBounds.Dy(),
		SizeBytes:    size,
	}, nil
}

func (g *ImageGenerator) Supports(kind media.Kind) bool { return kind == media.KindImage }

func (g *ImageGenerator) Name() string { return "image" }

// encodeWebP writes img to dstPath at the spec quality, stepping quality
// down until the result fits the spec's byte ceiling. Failing to fit at the
// quality floor is a generation error rather than an oversized thumbnail.
func encodeWebP(img image.Image, spec Spec, dstPath string) (int64, error) {
	var buf bytes.Buffer
	quality := spec.Quality
	for {
		buf.Reset()
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality * 100)}); err != nil {
			return 0, generationError("encode", err)
		}
		if buf.Len() == 0 {
			return 0, generationError("encode", fmt.Errorf("encoder produced no data"))
		}
		if int64(buf.Len()) <= spec.MaxSizeBytes {
			break
		}
		quality -= 0.1
		if quality < qualityFloor {
			return 0, generationError("encode", fmt.Errorf("cannot fit %d bytes under %d at quality floor", buf.Len(), spec.MaxSizeBytes))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, generationError("write", err)
	}
	if err := os.WriteFile(dstPath, buf.Bytes(), 0o644); err != nil {
		return 0, generationError("write", err)
	}
	return int64(buf.Len()), nil
}
