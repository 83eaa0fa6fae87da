// cmd/backfill/main.go
//
// Scans legacy-shaped listings that still have media and publishes
// thumbnail jobs for them, migrating records to the modern shape as the
// workers complete. Kind is re-classified per URL; entries the classifier
// cannot place are skipped rather than guessed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/listinghub/property-media/internal/bus"
	"github.com/listinghub/property-media/internal/listing"
	"github.com/listinghub/property-media/internal/media"
	"github.com/listinghub/property-media/internal/store"
	"github.com/listinghub/property-media/pkg/schema"
)

type config struct {
	NATSURL     string
	JobSubject  string
	DatabaseURL string
	BatchSize   int
	Limit       int
	DryRun      bool
}

// candidateLister pages through backfill candidates with an id cursor.
type candidateLister interface {
	ListNeedingThumbnails(ctx context.Context, afterID string, limit int) ([]*listing.Property, error)
}

// jobPublisher emits job events. Nil in dry-run mode.
type jobPublisher interface {
	PublishJSON(subject string, v any) error
}

type backfillStats struct {
	Scanned   int
	Published int
	Skipped   int
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	logger.Info("backfill starting",
		"nats_url", cfg.NATSURL,
		"job_subject", cfg.JobSubject,
		"batch_size", cfg.BatchSize,
		"limit", cfg.Limit,
		"dry_run", cfg.DryRun,
	)

	if cfg.DatabaseURL == "" {
		fatal(logger, "DATABASE_URL is required", nil)
	}

	ctx := context.Background()

	listings, err := store.NewListingStore(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "connect listing store", err)
	}
	defer listings.Close()

	var nc jobPublisher
	if !cfg.DryRun {
		c, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
		}
		defer c.Close()
		nc = c
	}

	stats, err := runBackfill(ctx, cfg, listings, nc, logger)
	if err != nil {
		fatal(logger, "backfill failed", err)
	}

	logger.Info("backfill finished", "scanned", stats.Scanned, "published", stats.Published, "skipped", stats.Skipped, "dry_run", cfg.DryRun)
}

// runBackfill walks the candidate set once, batch by batch. Candidates only
// flip to the modern shape asynchronously (when a worker writes their cover
// thumbnail), so each batch advances the id cursor past the rows it already
// handled instead of re-querying from the top.
func runBackfill(ctx context.Context, cfg config, listings candidateLister, nc jobPublisher, logger *slog.Logger) (backfillStats, error) {
	var stats backfillStats
	cursor := ""

	for stats.Scanned < cfg.Limit {
		batch := cfg.BatchSize
		if remaining := cfg.Limit - stats.Scanned; remaining < batch {
			batch = remaining
		}

		props, err := listings.ListNeedingThumbnails(ctx, cursor, batch)
		if err != nil {
			return stats, fmt.Errorf("list backfill candidates: %w", err)
		}
		if len(props) == 0 {
			break
		}
		stats.Scanned += len(props)
		cursor = props[len(props)-1].ID

		for _, p := range props {
			// The SQL filter is a pre-selection; the resolver is the
			// authority on what needs backfilling.
			if !p.NeedsThumbnailGeneration() {
				stats.Skipped++
				continue
			}

			for i, imageURL := range p.Images {
				kind := media.Classify(imageURL)
				if kind == media.KindUnknown {
					logger.Warn("unclassifiable media skipped", "listing_id", p.ID, "url", imageURL)
					stats.Skipped++
					continue
				}

				evt := schema.MediaUploaded{
					JobID:      uuid.NewString(),
					ListingID:  p.ID,
					Key:        keyFromURL(imageURL),
					FileName:   fileNameFromURL(imageURL),
					IsCover:    i == 0,
					HappenedAt: time.Now().Unix(),
				}

				if cfg.DryRun {
					logger.Info("would publish job", "listing_id", p.ID, "key", evt.Key, "kind", kind, "is_cover", evt.IsCover)
					stats.Published++
					continue
				}
				if err := nc.PublishJSON(cfg.JobSubject, evt); err != nil {
					return stats, fmt.Errorf("publish job for %s: %w", p.ID, err)
				}
				stats.Published++
			}
		}

		if len(props) < batch {
			break
		}
	}

	return stats, nil
}

// keyFromURL maps a stored cloud URL back to its bucket key. Bare keys pass
// through unchanged.
func keyFromURL(imageURL string) string {
	if !strings.Contains(imageURL, "://") {
		return strings.TrimPrefix(imageURL, "/")
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return imageURL
	}
	return strings.TrimPrefix(u.Path, "/")
}

func fileNameFromURL(imageURL string) string {
	key := keyFromURL(imageURL)
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

func loadConfig() config {
	cfg := config{
		NATSURL:     getenv("NATS_URL", "nats://127.0.0.1:4222"),
		JobSubject:  getenv("JOB_SUBJECT", "property.media.uploaded"),
		DatabaseURL: getenv("DATABASE_URL", ""),
	}

	flag.IntVar(&cfg.BatchSize, "batch-size", 100, "listings fetched per query")
	flag.IntVar(&cfg.Limit, "limit", 1000, "maximum listings to scan")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "log jobs without publishing")
	flag.Parse()

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1000
	}
	return cfg
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
