// Package convert wraps the external ffmpeg/ffprobe tools used to decode
// video files during thumbnail generation.
package convert

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoInfo holds the stream metadata needed to size a frame capture.
type VideoInfo struct {
	Width    int
	Height   int
	Duration float64 // seconds
	Size     int64
}

// FFmpeg extracts still frames from video files by shelling out to ffmpeg.
type FFmpeg struct{}

func NewFFmpeg() *FFmpeg { return &FFmpeg{} }

// Probe returns the first video stream's dimensions and duration via
// ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, input string) (*VideoInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-show_entries", "format=size",
		"-of", "default=noprint_wrappers=1",
		input,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w\noutput: %s", err, string(out))
	}

	info := &VideoInfo{}
	for _, line := range strings.Split(string(out), "\n") {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := parts[0], strings.TrimSpace(parts[1])
		switch key {
		case "width":
			if w, err := strconv.Atoi(value); err == nil {
				info.Width = w
			}
		case "height":
			if h, err := strconv.Atoi(value); err == nil {
				info.Height = h
			}
		case "duration":
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				info.Duration = d
			}
		case "size":
			if s, err := strconv.ParseInt(value, 10, 64); err == nil {
				info.Size = s
			}
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("ffprobe returned no video stream dimensions for %s", input)
	}
	return info, nil
}

// ExtractFrame decodes a single frame at the given offset and writes it
// scaled into the width x height bounding box (aspect ratio preserved).
// The offset should be a small positive value: the very first frame of many
// encodings is not cleanly decodable.
func (f *FFmpeg) ExtractFrame(ctx context.Context, input, output string, width, height int, offsetSeconds float64) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height)
	args := []string{
		"-ss", strconv.FormatFloat(offsetSeconds, 'f', -1, 64),
		"-i", input,
		"-vf", filter,
		"-frames:v", "1",
		"-y",
		output,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\noutput: %s", err, string(out))
	}
	return nil
}
