package listing

import (
	"testing"

	"github.com/listinghub/property-media/internal/media"
)

func TestLegacyRecordResolution(t *testing.T) {
	p := &Property{Images: []string{"a.jpg", "b.jpg"}}

	if p.IsModernSystem() {
		t.Error("record without cover thumbnail should be old system")
	}
	if got, want := p.EffectiveThumbnailURL(), media.ThumbnailURL("a.jpg"); got != want {
		t.Errorf("EffectiveThumbnailURL = %q, want %q", got, want)
	}
	if got := p.EffectiveCoverImageURL(); got != "a.jpg" {
		t.Errorf("EffectiveCoverImageURL = %q, want a.jpg", got)
	}
	if !p.HasMedia() {
		t.Error("HasMedia should be true")
	}
	if got := p.MediaCount(); got != 2 {
		t.Errorf("MediaCount = %d, want 2", got)
	}
	if got := p.ImageCount(); got != 2 {
		t.Errorf("ImageCount = %d, want 2", got)
	}
	if got := p.VideoCount(); got != 0 {
		t.Errorf("VideoCount = %d, want 0", got)
	}
	if !p.NeedsThumbnailGeneration() {
		t.Error("legacy record with media needs thumbnail generation")
	}
}

func TestModernRecordResolution(t *testing.T) {
	cover := "https://x/cover-thumb.webp"
	p := &Property{
		CoverThumbnailURL: cover,
		Media: []media.Item{
			{ID: "m1", Type: media.KindImage, StorageType: media.StorageCloud, URL: "https://x/a.jpg", IsCover: true},
		},
	}

	if !p.IsModernSystem() {
		t.Error("record with cover thumbnail should be new system")
	}
	if got := p.EffectiveThumbnailURL(); got != cover {
		t.Errorf("EffectiveThumbnailURL = %q, want %q verbatim", got, cover)
	}
	// Legacy-only predicates stay legacy-only even on modern records.
	if got := p.EffectiveCoverImageURL(); got != "" {
		t.Errorf("EffectiveCoverImageURL = %q, want empty", got)
	}
	if p.HasMedia() {
		t.Error("HasMedia ignores the modern items and should be false")
	}
	if p.NeedsThumbnailGeneration() {
		t.Error("modern record must not need thumbnail generation")
	}
}

func TestDiscriminantFlipsDependentOutputs(t *testing.T) {
	p := &Property{Images: []string{"house.jpg"}}

	if p.IsModernSystem() || p.Compression().IsCompressed {
		t.Fatal("expected old-system outputs before flip")
	}
	legacyThumb := p.EffectiveThumbnailURL()
	if legacyThumb != "house-thumb.webp" {
		t.Fatalf("unexpected legacy thumbnail: %q", legacyThumb)
	}

	p.CoverThumbnailURL = "https://cdn/house-cover-thumb.webp"

	if !p.IsModernSystem() {
		t.Error("flipping the single field must flip the system")
	}
	if got := p.EffectiveThumbnailURL(); got != p.CoverThumbnailURL {
		t.Errorf("EffectiveThumbnailURL = %q, want cover verbatim", got)
	}
	status := p.Compression()
	if !status.IsCompressed || status.System != "new" || !status.HasThumbnail {
		t.Errorf("unexpected compression status: %+v", status)
	}
	if p.NeedsThumbnailGeneration() {
		t.Error("modern record must not need backfill")
	}
}

func TestResolverTotalOverEmptyRecord(t *testing.T) {
	p := &Property{}

	if p.IsModernSystem() {
		t.Error("empty record is old system")
	}
	if got := p.EffectiveThumbnailURL(); got != "" {
		t.Errorf("EffectiveThumbnailURL = %q, want empty", got)
	}
	if got := p.EffectiveCoverImageURL(); got != "" {
		t.Errorf("EffectiveCoverImageURL = %q, want empty", got)
	}
	if p.HasMedia() || p.MediaCount() != 0 || p.NeedsThumbnailGeneration() {
		t.Error("empty record has no media and needs no backfill")
	}
	status := p.Compression()
	if status.IsCompressed || status.System != "old" || status.HasThumbnail {
		t.Errorf("unexpected compression status: %+v", status)
	}
}

func TestNewMediaSourceNilProperty(t *testing.T) {
	src := NewMediaSource(nil)
	if src.System != SystemOld {
		t.Fatalf("nil property should classify as old system, got %s", src.System)
	}
	if len(src.Images) != 0 || len(src.Items) != 0 || src.Cover != "" {
		t.Fatalf("nil property should yield an empty source: %+v", src)
	}
}
