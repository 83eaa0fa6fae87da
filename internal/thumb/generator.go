package thumb

import (
	"context"

	"github.com/listinghub/property-media/internal/media"
)

// Output describes a generated thumbnail file.
type Output struct {
	Path         string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	SizeBytes    int64
}

// Generator produces a thumbnail file from a source file. Implementations
// make a single attempt; callers impose deadlines through ctx and decide
// whether to retry.
type Generator interface {
	// Generate reads srcPath and writes the thumbnail to dstPath.
	Generate(ctx context.Context, srcPath, dstPath string) (Output, error)

	// Supports reports whether this generator handles the given kind.
	Supports(kind media.Kind) bool

	// Name identifies the generator in logs.
	Name() string
}

// ForKind routes a media kind to its generator. Unknown kinds get
// ErrUnsupportedMedia before any processing begins.
func ForKind(kind media.Kind) (Generator, error) {
	switch kind {
	case media.KindImage:
		return NewImageGenerator(), nil
	case media.KindVideo:
		return NewVideoGenerator(), nil
	default:
		return nil, ErrUnsupportedMedia
	}
}
