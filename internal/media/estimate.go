package media

const (
	maxImageThumbBytes = 50 * 1024
	maxVideoThumbBytes = 40 * 1024
)

// EstimateThumbnailSize predicts the byte size of a thumbnail derived from
// an original of the given size: 5% for images capped at 50KiB, 2% for
// videos capped at 40KiB, with integer division flooring fractional bytes.
// Advisory only, for upload UX budgeting; it is never checked against
// actual generator output.
func EstimateThumbnailSize(originalBytes int64, kind Kind) int64 {
	if originalBytes < 0 {
		originalBytes = 0
	}
	switch kind {
	case KindImage:
		return minInt64(originalBytes/20, maxImageThumbBytes)
	case KindVideo:
		return minInt64(originalBytes/50, maxVideoThumbBytes)
	default:
		return 0
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
