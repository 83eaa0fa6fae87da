package thumb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	"github.com/listinghub/property-media/internal/convert"
	"github.com/listinghub/property-media/internal/media"
)

// seekOffsetSeconds is where the frame is captured. A small positive offset
// rather than time zero: the first frame of many encodings is not cleanly
// decodable.
const seekOffsetSeconds = 0.1

// captureStage orders the video capture handshake. A frame can only be read
// after metadata is known (dimensions) and the seek has completed.
type captureStage int

const (
	stageIdle captureStage = iota
	stageMetadataLoaded
	stageSeeked
	stageRasterized
)

func (s captureStage) String() string {
	switch s {
	case stageIdle:
		return "idle"
	case stageMetadataLoaded:
		return "metadata_loaded"
	case stageSeeked:
		return "seeked"
	case stageRasterized:
		return "rasterized"
	default:
		return "invalid"
	}
}

// frameCapture owns one video's temporary decoding state. release must run
// on every exit path.
type frameCapture struct {
	ffmpeg *convert.FFmpeg
	spec   Spec
	src    string

	stage     captureStage
	info      *convert.VideoInfo
	width     int
	height    int
	framePath string
}

func newFrameCapture(ffmpeg *convert.FFmpeg, spec Spec, src string) *frameCapture {
	return &frameCapture{ffmpeg: ffmpeg, spec: spec, src: src, stage: stageIdle}
}

// loadMetadata probes the video and computes the aspect-fit target
// dimensions.
func (c *frameCapture) loadMetadata(ctx context.Context) error {
	if c.stage != stageIdle {
		return fmt.Errorf("loadMetadata called in stage %s", c.stage)
	}
	info, err := c.ffmpeg.Probe(ctx, c.src)
	if err != nil {
		return err
	}
	c.info = info
	c.width, c.height = c.spec.Fit(info.Width, info.Height)
	c.stage = stageMetadataLoaded
	return nil
}

// seekFrame extracts the frame at the seek offset into a temporary file.
// Requires loadMetadata to have run: the extraction is sized from it.
func (c *frameCapture) seekFrame(ctx context.Context) error {
	if c.stage != stageMetadataLoaded {
		return fmt.Errorf("seekFrame called in stage %s", c.stage)
	}
	tmp, err := os.CreateTemp("", "frame-*.png")
	if err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	c.framePath = tmp.Name()

	if err := c.ffmpeg.ExtractFrame(ctx, c.src, c.framePath, c.width, c.height, seekOffsetSeconds); err != nil {
		return err
	}
	c.stage = stageSeeked
	return nil
}

// rasterize re-encodes the captured frame as a WebP still at dstPath.
func (c *frameCapture) rasterize(dstPath string) (Output, error) {
	if c.stage != stageSeeked {
		return Output{}, fmt.Errorf("rasterize called in stage %s", c.stage)
	}
	frame, err := imaging.Open(c.framePath)
	if err != nil {
		return Output{}, err
	}

	size, err := encodeWebP(frame, c.spec, dstPath)
	if err != nil {
		return Output{}, err
	}
	c.stage = stageRasterized

	b := frame.Bounds()
	return Output{
		Path:         dstPath,
		Width:        b.Dx(),
		Height:       b.Dy(),
		SourceWidth:  c.info.Width,
		SourceHeight: c.info.Height,
		SizeBytes:    size,
	}, nil
}

// release removes the temporary frame. Safe to call in any stage, and more
// than once.
func (c *frameCapture) release() {
	if c.framePath != "" {
		_ = os.Remove(c.framePath)
		c.framePath = ""
	}
}

// VideoGenerator captures a near-start frame from a video and encodes it as
// a WebP still.
type VideoGenerator struct {
	ffmpeg *convert.FFmpeg
	spec   Spec
}

func NewVideoGenerator() *VideoGenerator {
	return &VideoGenerator{ffmpeg: convert.NewFFmpeg(), spec: VideoSpec}
}

func (g *VideoGenerator) Generate(ctx context.Context, srcPath, dstPath string) (Output, error) {
	capture := newFrameCapture(g.ffmpeg, g.spec, srcPath)
	defer capture.release()

	if err := capture.loadMetadata(ctx); err != nil {
		return Output{}, generationError("load metadata", err)
	}
	if err := capture.seekFrame(ctx); err != nil {
		return Output{}, generationError("seek frame", err)
	}
	out, err := capture.rasterize(dstPath)
	if err != nil {
		if errors.Is(err, ErrGeneration) {
			return Output{}, err
		}
		return Output{}, generationError("rasterize", err)
	}
	return out, nil
}

func (g *VideoGenerator) Supports(kind media.Kind) bool { return kind == media.KindVideo }

func (g *VideoGenerator) Name() string { return "video" }
