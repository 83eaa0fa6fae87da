// Package thumb generates downscaled WebP previews from uploaded images
// and videos.
package thumb

// Spec is a per-kind thumbnail configuration. MaxWidth and MaxHeight define
// a bounding box, not an exact size: the source's aspect ratio is preserved
// by scaling its longer side down to the box's matching dimension.
type Spec struct {
	MaxWidth     int
	MaxHeight    int
	Quality      float64 // 0..1
	Format       string
	MaxSizeBytes int64
}

var (
	// ImageSpec bounds thumbnails derived from uploaded photos.
	ImageSpec = Spec{MaxWidth: 150, MaxHeight: 150, Quality: 0.8, Format: "webp", MaxSizeBytes: 50 * 1024}

	// VideoSpec bounds still frames captured from uploaded videos.
	VideoSpec = Spec{MaxWidth: 200, MaxHeight: 200, Quality: 0.7, Format: "webp", MaxSizeBytes: 40 * 1024}
)

// Fit returns the target dimensions for a source of the given size. Sources
// already inside the box keep their dimensions; larger sources are scaled
// down uniformly until both sides fit.
func (s Spec) Fit(srcW, srcH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if srcW <= s.MaxWidth && srcH <= s.MaxHeight {
		return srcW, srcH
	}

	scaleW := float64(s.MaxWidth) / float64(srcW)
	scaleH := float64(s.MaxHeight) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	w := int(float64(srcW)*scale + 0.5)
	h := int(float64(srcH)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
