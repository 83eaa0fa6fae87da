// cmd/thumbctl is a standalone CLI for exercising the thumbnail pipeline
// against local files, without the worker or any infrastructure.
//
// Usage:
//
//	thumbctl -input house.jpg
//	thumbctl -input tour.mp4 -output tour-thumb.webp
//	thumbctl -input tour.mp4 -classify   # classification and estimate only
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/listinghub/property-media/internal/media"
	"github.com/listinghub/property-media/internal/thumb"
)

func main() {
	input := flag.String("input", "", "input file path (required)")
	output := flag.String("output", "", "output thumbnail path (default: derived by naming convention)")
	classifyOnly := flag.Bool("classify", false, "show classification and size estimate only")
	timeout := flag.Int("timeout", 30, "generation timeout in seconds")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: -input flag is required")
		flag.Usage()
		os.Exit(1)
	}

	info, err := os.Stat(*input)
	if err != nil {
		log.Fatalf("input file: %v", err)
	}

	kind := media.Classify(*input)
	fmt.Printf("input:    %s\n", *input)
	fmt.Printf("kind:     %s\n", kind)
	fmt.Printf("size:     %d bytes\n", info.Size())
	fmt.Printf("estimate: %d bytes\n", media.EstimateThumbnailSize(info.Size(), kind))

	if *classifyOnly {
		return
	}

	dst := *output
	if dst == "" {
		dst = media.ThumbnailURL(*input)
	}

	generator, err := thumb.ForKind(kind)
	if err != nil {
		log.Fatalf("no generator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	start := time.Now()
	out, err := generator.Generate(ctx, *input, dst)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	fmt.Printf("output:   %s\n", out.Path)
	fmt.Printf("dims:     %dx%d (source %dx%d)\n", out.Width, out.Height, out.SourceWidth, out.SourceHeight)
	fmt.Printf("bytes:    %d\n", out.SizeBytes)
	fmt.Printf("took:     %s\n", time.Since(start).Round(time.Millisecond))
}
