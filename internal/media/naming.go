package media

import "strings"

const (
	thumbSuffix      = "-thumb.webp"
	coverThumbSuffix = "-cover-thumb.webp"
)

// ThumbnailURL computes the storage URL a thumbnail is expected to live at
// for a given original URL. It is a pure naming convention: the last path
// segment's base name (everything before the first dot) gets the
// "-thumb.webp" suffix. The derived URL may not exist in storage; existence
// is the caller's problem.
//
// Query strings are not preserved: "photo.jpg?v=1" derives to
// "photo-thumb.webp". This is documented behavior of the convention.
func ThumbnailURL(originalURL string) string {
	return rewriteLastSegment(originalURL, thumbSuffix)
}

// CoverThumbnailURL is the cover-specific variant of ThumbnailURL, using the
// "-cover-thumb.webp" suffix.
func CoverThumbnailURL(originalURL string) string {
	return rewriteLastSegment(originalURL, coverThumbSuffix)
}

func rewriteLastSegment(originalURL, suffix string) string {
	if originalURL == "" {
		return ""
	}
	segments := strings.Split(originalURL, "/")
	last := segments[len(segments)-1]

	base := last
	if i := strings.Index(last, "."); i >= 0 {
		base = last[:i]
	}

	segments[len(segments)-1] = base + suffix
	return strings.Join(segments, "/")
}
