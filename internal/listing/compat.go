package listing

import "github.com/listinghub/property-media/internal/media"

// System names the schema vintage of a property's media fields.
type System string

const (
	SystemOld System = "old"
	SystemNew System = "new"
)

// MediaSource is the tagged view of a property's media, built once at the
// read boundary so downstream code switches on System instead of re-deriving
// the discriminant from raw fields.
type MediaSource struct {
	System System

	// Legacy fields, populated for both vintages (old records only have
	// these; new records may still carry them).
	Images []string

	// Modern fields, meaningful when System == SystemNew.
	Cover string
	Items []media.Item
}

// NewMediaSource classifies a property's media fields. The discriminant is
// deliberately a single field: a non-empty cover thumbnail URL means the
// record was written by the modern upload flow.
func NewMediaSource(p *Property) MediaSource {
	src := MediaSource{System: SystemOld}
	if p == nil {
		return src
	}
	src.Images = p.Images
	src.Items = p.Media
	if p.CoverThumbnailURL != "" {
		src.System = SystemNew
		src.Cover = p.CoverThumbnailURL
	}
	return src
}

// CompressionStatus summarises a property's media processing state for
// display code.
type CompressionStatus struct {
	IsCompressed bool   `json:"is_compressed"`
	System       string `json:"system"`
	HasThumbnail bool   `json:"has_thumbnail"`
}

// IsModernSystem reports whether the record was written by the modern
// upload flow.
func (p *Property) IsModernSystem() bool {
	return NewMediaSource(p).System == SystemNew
}

// EffectiveThumbnailURL returns the thumbnail display code should use:
// the explicit cover thumbnail on modern records, or the derived thumbnail
// of the first legacy image. Empty when the record has no usable media.
func (p *Property) EffectiveThumbnailURL() string {
	src := NewMediaSource(p)
	switch src.System {
	case SystemNew:
		return src.Cover
	default:
		if len(src.Images) > 0 {
			return media.ThumbnailURL(src.Images[0])
		}
		return ""
	}
}

// EffectiveCoverImageURL returns the full-size cover image. It consults only
// the legacy array regardless of vintage; modern records with an empty
// Images array yield "". Intentionally legacy-only until product decides
// how modern items should fill in.
func (p *Property) EffectiveCoverImageURL() string {
	src := NewMediaSource(p)
	if len(src.Images) > 0 {
		return src.Images[0]
	}
	return ""
}

// HasMedia reports whether the legacy array holds anything. Like
// EffectiveCoverImageURL it does not inspect the modern items.
func (p *Property) HasMedia() bool {
	return len(NewMediaSource(p).Images) > 0
}

// MediaCount is the number of legacy image URLs.
func (p *Property) MediaCount() int {
	return len(NewMediaSource(p).Images)
}

// ImageCount equals MediaCount: bare URLs cannot be told apart by kind
// under the legacy shape.
func (p *Property) ImageCount() int {
	return p.MediaCount()
}

// VideoCount is always zero under this resolver; the legacy shape carries
// no kind information and we do not guess from URLs.
func (p *Property) VideoCount() int {
	return 0
}

// NeedsThumbnailGeneration signals that a backfill job should generate
// thumbnails for this record: it is legacy-shaped and has media.
func (p *Property) NeedsThumbnailGeneration() bool {
	src := NewMediaSource(p)
	return src.System == SystemOld && len(src.Images) > 0
}

// Compression returns the record's processing summary.
func (p *Property) Compression() CompressionStatus {
	src := NewMediaSource(p)
	modern := src.System == SystemNew
	return CompressionStatus{
		IsCompressed: modern,
		System:       string(src.System),
		HasThumbnail: modern && src.Cover != "",
	}
}
