package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listinghub/property-media/internal/listing"
	"github.com/listinghub/property-media/internal/media"
)

// ListingStore reads and upgrades property records. The resolver itself
// never touches the database; this store only feeds it records and persists
// the modern-shape upgrade after a successful cover thumbnail.
type ListingStore struct {
	pool *pgxpool.Pool
}

func NewListingStore(ctx context.Context, databaseURL string) (*ListingStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &ListingStore{pool: pool}, nil
}

func (s *ListingStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Get loads one property's media fields.
func (s *ListingStore) Get(ctx context.Context, id string) (*listing.Property, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, coalesce(images, '[]'::jsonb), coalesce(media, '[]'::jsonb), coalesce(cover_thumbnail_url, '')
		FROM properties
		WHERE id = $1`, id)
	return scanProperty(row)
}

// ListNeedingThumbnails returns legacy-shaped properties that still have
// media, keyset-paged by id: only rows after afterID are returned. Rows do
// not leave the candidate set until a worker writes their cover thumbnail,
// so callers must advance the cursor rather than re-query from the top.
// Candidates are pre-filtered in SQL and re-checked through the resolver by
// callers before any job is published.
func (s *ListingStore) ListNeedingThumbnails(ctx context.Context, afterID string, limit int) ([]*listing.Property, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, coalesce(images, '[]'::jsonb), coalesce(media, '[]'::jsonb), coalesce(cover_thumbnail_url, '')
		FROM properties
		WHERE coalesce(cover_thumbnail_url, '') = ''
		  AND jsonb_array_length(coalesce(images, '[]'::jsonb)) > 0
		  AND id > $2
		ORDER BY id
		LIMIT $1`, limit, afterID)
	if err != nil {
		return nil, fmt.Errorf("query backfill candidates: %w", err)
	}
	defer rows.Close()

	var props []*listing.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// SetCoverThumbnail upgrades a record to the modern shape by writing its
// cover thumbnail URL.
func (s *ListingStore) SetCoverThumbnail(ctx context.Context, id, thumbnailURL string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE properties
		SET cover_thumbnail_url = $2, updated_at = now()
		WHERE id = $1`, id, thumbnailURL)
	if err != nil {
		return fmt.Errorf("set cover thumbnail for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*listing.Property, error) {
	var (
		p          listing.Property
		imagesJSON []byte
		mediaJSON  []byte
	)
	if err := row.Scan(&p.ID, &imagesJSON, &mediaJSON, &p.CoverThumbnailURL); err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images for %s: %w", p.ID, err)
	}
	var items []media.Item
	if err := json.Unmarshal(mediaJSON, &items); err != nil {
		return nil, fmt.Errorf("decode media for %s: %w", p.ID, err)
	}
	p.Media = items
	return &p, nil
}
