// Package listing holds the property record and the compatibility layer
// that reconciles its two historical media representations into one
// effective read view.
package listing

import (
	"time"

	"github.com/listinghub/property-media/internal/media"
)

// Property is a real-estate listing. Two media representations coexist on
// the same record for backward compatibility:
//
//   - Legacy: Images, a flat ordered list of cloud URLs; the first element
//     is implicitly the cover.
//   - Modern: Media plus CoverThumbnailURL, with an explicit cover flag per
//     item.
//
// A record is modern iff CoverThumbnailURL is non-empty, regardless of
// whether Media is populated. The resolver in compat.go never mutates a
// Property.
type Property struct {
	ID          string    `json:"id" db:"id"`
	BrokerID    string    `json:"broker_id" db:"broker_id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address" db:"address"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	AreaSqm     float64   `json:"area_sqm" db:"area_sqm"`
	Rooms       int       `json:"rooms" db:"rooms"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Legacy media shape.
	Images []string `json:"images,omitempty" db:"images"`

	// Modern media shape.
	Media             []media.Item `json:"media,omitempty" db:"media"`
	CoverThumbnailURL string       `json:"cover_thumbnail_url,omitempty" db:"cover_thumbnail_url"`
}
