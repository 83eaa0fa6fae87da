package thumb

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/listinghub/property-media/internal/convert"
	"github.com/listinghub/property-media/internal/media"
)

func TestForKind(t *testing.T) {
	tests := []struct {
		name        string
		kind        media.Kind
		wantGen     string
		shouldError bool
	}{
		{"image", media.KindImage, "image", false},
		{"video", media.KindVideo, "video", false},
		{"unknown", media.KindUnknown, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := ForKind(tt.kind)

			if tt.shouldError {
				if !errors.Is(err, ErrUnsupportedMedia) {
					t.Errorf("expected ErrUnsupportedMedia, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen.Name() != tt.wantGen {
				t.Errorf("ForKind(%s) = %s, want %s", tt.kind, gen.Name(), tt.wantGen)
			}
			if !gen.Supports(tt.kind) {
				t.Errorf("generator %s claims not to support %s", gen.Name(), tt.kind)
			}
		})
	}
}

func TestImageGeneratorGenerate(t *testing.T) {
	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "source.png")
	createTestImage(t, srcPath, 400, 200)

	dstPath := filepath.Join(tmp, "nested", "source-thumb.webp")
	out, err := NewImageGenerator().Generate(context.Background(), srcPath, dstPath)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if out.Width != 150 || out.Height != 75 {
		t.Errorf("unexpected thumbnail size: got %dx%d, want 150x75", out.Width, out.Height)
	}
	if out.SourceWidth != 400 || out.SourceHeight != 200 {
		t.Errorf("unexpected source size: %dx%d", out.SourceWidth, out.SourceHeight)
	}

	info, err := os.Stat(dstPath)
	if err != nil {
		t.Fatalf("thumbnail file not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("thumbnail is empty")
	}
	if info.Size() > ImageSpec.MaxSizeBytes {
		t.Fatalf("thumbnail exceeds byte ceiling: %d > %d", info.Size(), ImageSpec.MaxSizeBytes)
	}
	if out.SizeBytes != info.Size() {
		t.Errorf("reported size %d does not match file size %d", out.SizeBytes, info.Size())
	}
}

func TestImageGeneratorMissingSource(t *testing.T) {
	tmp := t.TempDir()
	_, err := NewImageGenerator().Generate(context.Background(), filepath.Join(tmp, "missing.png"), filepath.Join(tmp, "out.webp"))
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration for missing source, got %v", err)
	}
}

func TestImageGeneratorCancelledContext(t *testing.T) {
	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "source.png")
	createTestImage(t, srcPath, 40, 40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageGenerator().Generate(ctx, srcPath, filepath.Join(tmp, "out.webp"))
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration for cancelled context, got %v", err)
	}
}

func TestEncodeWebPByteCeiling(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	// Per-pixel variation so the encoding cannot collapse to a few bytes.
	for x := 0; x < 120; x++ {
		for y := 0; y < 120; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 255})
		}
	}

	tmp := t.TempDir()

	t.Run("fits under ceiling", func(t *testing.T) {
		dst := filepath.Join(tmp, "ok.webp")
		size, err := encodeWebP(img, ImageSpec, dst)
		if err != nil {
			t.Fatalf("encodeWebP returned error: %v", err)
		}
		if size == 0 || size > ImageSpec.MaxSizeBytes {
			t.Fatalf("size %d outside (0, %d]", size, ImageSpec.MaxSizeBytes)
		}
		if _, err := os.Stat(dst); err != nil {
			t.Fatalf("output not written: %v", err)
		}
	})

	t.Run("quality floor exhausted", func(t *testing.T) {
		spec := ImageSpec
		spec.MaxSizeBytes = 1
		dst := filepath.Join(tmp, "never.webp")
		_, err := encodeWebP(img, spec, dst)
		if !errors.Is(err, ErrGeneration) {
			t.Fatalf("expected ErrGeneration at quality floor, got %v", err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Fatalf("no output expected on floor failure, stat err: %v", err)
		}
	})
}

func TestFrameCaptureStageOrdering(t *testing.T) {
	capture := newFrameCapture(convert.NewFFmpeg(), VideoSpec, "tour.mp4")

	if err := capture.seekFrame(context.Background()); err == nil {
		t.Error("seekFrame before loadMetadata must fail")
	}
	if _, err := capture.rasterize("out.webp"); err == nil {
		t.Error("rasterize before seek must fail")
	}

	// release is safe in any stage and idempotent.
	capture.release()
	capture.release()
}

func TestFrameCaptureReleaseRemovesFrame(t *testing.T) {
	tmp := t.TempDir()
	framePath := filepath.Join(tmp, "frame.png")
	createTestImage(t, framePath, 10, 10)

	capture := &frameCapture{framePath: framePath}
	capture.release()

	if _, err := os.Stat(framePath); !os.IsNotExist(err) {
		t.Fatalf("expected frame file removed, stat err: %v", err)
	}
	if capture.framePath != "" {
		t.Fatal("frame path not cleared after release")
	}
}

func TestVideoGeneratorGenerate(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "sample.mp4")
	makeTestVideo(t, srcPath)

	// Temp frames are created in os.TempDir; pin it so leftovers are ours.
	frameDir := t.TempDir()
	t.Setenv("TMPDIR", frameDir)

	dstPath := filepath.Join(tmp, "sample-thumb.webp")
	out, err := NewVideoGenerator().Generate(context.Background(), srcPath, dstPath)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	longer := out.Width
	if out.Height > longer {
		longer = out.Height
	}
	if longer != VideoSpec.MaxWidth {
		t.Errorf("longer side = %d, want %d", longer, VideoSpec.MaxWidth)
	}
	if out.Width > VideoSpec.MaxWidth || out.Height > VideoSpec.MaxHeight {
		t.Errorf("thumbnail %dx%d exceeds box", out.Width, out.Height)
	}
	if _, err := os.Stat(dstPath); err != nil {
		t.Fatalf("thumbnail not created: %v", err)
	}

	// The temporary frame must be gone regardless of outcome.
	leftovers, err := filepath.Glob(filepath.Join(frameDir, "frame-*.png"))
	if err != nil {
		t.Fatalf("glob frame dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temporary frames not released: %v", leftovers)
	}
}

func TestVideoGeneratorCorruptInput(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	tmp := t.TempDir()
	srcPath := filepath.Join(tmp, "corrupt.mp4")
	if err := os.WriteFile(srcPath, []byte("not a video"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err := NewVideoGenerator().Generate(context.Background(), srcPath, filepath.Join(tmp, "out.webp"))
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration for corrupt input, got %v", err)
	}
}

// makeTestVideo renders a 5 second 640x360 clip with ffmpeg.
func makeTestVideo(t *testing.T, path string) {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi",
		"-i", "testsrc=duration=5:size=640x360:rate=10",
		"-pix_fmt", "yuv420p",
		"-y", path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot render test video: %v\n%s", err, out)
	}
}

func createTestImage(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		t.Fatalf("encode png: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}
