// Package media holds the listing media domain: kind classification,
// thumbnail naming conventions, size estimation and the unified media item
// model shared by upload flows and the compatibility resolver.
package media

import "strings"

// Kind classifies a media asset by what it decodes to.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

// LocalVideoPrefix marks videos that were recorded on-device and have not
// been uploaded to cloud storage yet. Upload flows and the classifier share
// this token.
const LocalVideoPrefix = "local_video_"

// blobScheme is the transient object-URL scheme used for locally created
// video references awaiting upload.
const blobScheme = "blob:"

// Video extensions are checked before image extensions: when an identifier
// matches patterns for both kinds, video wins.
var videoExts = []string{".mp4", ".webm", ".mov", ".avi", ".mkv", ".m4v"}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Classify decides whether a URL or bare filename refers to an image, a
// video, or something we cannot handle. Matching is case-insensitive and
// substring-based, so URLs with query strings still classify.
func Classify(identifier string) Kind {
	if identifier == "" {
		return KindUnknown
	}
	lower := strings.ToLower(identifier)

	if strings.HasPrefix(lower, LocalVideoPrefix) || strings.HasPrefix(lower, blobScheme) {
		return KindVideo
	}
	for _, ext := range videoExts {
		if strings.Contains(lower, ext) {
			return KindVideo
		}
	}
	for _, ext := range imageExts {
		if strings.Contains(lower, ext) {
			return KindImage
		}
	}
	return KindUnknown
}

// KindFromMime maps a declared MIME type to a Kind.
func KindFromMime(mimeType string) Kind {
	lower := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(lower, "image/"):
		return KindImage
	case strings.HasPrefix(lower, "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}
