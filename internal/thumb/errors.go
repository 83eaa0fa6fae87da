package thumb

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMedia means the file's declared kind is neither image
	// nor video. Raised before any processing begins.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrGeneration means a processing stage failed. Fatal to the single
	// invocation; retrying is the caller's decision.
	ErrGeneration = errors.New("thumbnail generation failed")
)

func generationError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrGeneration, stage, err)
}
