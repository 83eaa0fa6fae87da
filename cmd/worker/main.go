// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/listinghub/property-media/internal/bus"
	"github.com/listinghub/property-media/internal/media"
	"github.com/listinghub/property-media/internal/process"
	"github.com/listinghub/property-media/internal/store"
	"github.com/listinghub/property-media/internal/thumb"
	"github.com/listinghub/property-media/pkg/schema"
)

type config struct {
	NATSURL       string
	JobSubject    string
	WorkerQueue   string
	ResultSubject string
	ThumbDir      string
	JobTimeout    time.Duration
	DatabaseURL   string
	S3            store.S3Config
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger.Info("worker starting",
		"nats_url", cfg.NATSURL,
		"job_subject", cfg.JobSubject,
		"queue", cfg.WorkerQueue,
		"result_subject", cfg.ResultSubject,
		"thumb_dir", cfg.ThumbDir,
		"job_timeout", cfg.JobTimeout,
	)

	objects, err := store.NewObjectStore(context.Background(), cfg.S3)
	if err != nil {
		fatal(logger, "build object store", err, "bucket", cfg.S3.Bucket)
	}
	logger.Info("object store ready", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)

	var listings *store.ListingStore
	if cfg.DatabaseURL != "" {
		listings, err = store.NewListingStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "connect listing store", err)
		}
		defer listings.Close()
		logger.Info("listing store ready")
	} else {
		logger.Info("no DATABASE_URL configured, listing records will not be upgraded")
	}

	if err := os.MkdirAll(cfg.ThumbDir, 0o755); err != nil {
		fatal(logger, "ensure thumbnail directory", err, "thumb_dir", cfg.ThumbDir)
	}

	nc, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
	}
	logger.Info("connected to NATS", "nats_url", cfg.NATSURL)
	defer nc.Close()

	_, err = nc.QueueSubscribeJSON(cfg.JobSubject, cfg.WorkerQueue, cfg.JobTimeout, func(ctx context.Context, data []byte) {
		var evt schema.MediaUploaded
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Error("decode job event", "err", err)
			return
		}
		if err := handleJob(ctx, evt, cfg, objects, listings, nc, logger); err != nil {
			logger.Error("job failed", "job_id", evt.JobID, "err", err)
		}
	})
	if err != nil {
		fatal(logger, "subscribe worker", err, "job_subject", cfg.JobSubject, "queue", cfg.WorkerQueue)
	}
	logger.Info("listening for jobs", "subject", cfg.JobSubject, "queue", cfg.WorkerQueue)

	select {}
}

func classifyError(err error) schema.FailureType {
	if err == nil {
		return ""
	}
	if errors.Is(err, thumb.ErrUnsupportedMedia) {
		return schema.FailureTypeValidation
	}
	if errors.Is(err, thumb.ErrGeneration) {
		return schema.FailureTypePermanent
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "context deadline exceeded") {
		return schema.FailureTypeRetryable
	}
	if strings.Contains(errStr, "no such file") ||
		strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "not found") {
		return schema.FailureTypePermanent
	}

	return schema.FailureTypeRetryable
}

func handleJob(ctx context.Context, evt schema.MediaUploaded, cfg config, objects *store.ObjectStore, listings *store.ListingStore, nc *bus.Client, logger *slog.Logger) error {
	if evt.JobID == "" {
		evt.JobID = uuid.NewString()
	}
	jobLogger := logger.With("job_id", evt.JobID, "listing_id", evt.ListingID, "key", evt.Key)
	jobLogger.Info("received job", "is_cover", evt.IsCover, "file_name", evt.FileName)

	job := process.NewJob(evt.JobID, evt.ListingID, evt.Key)
	state := newJobState(evt)

	if evt.Key == "" || evt.ListingID == "" {
		err := fmt.Errorf("job %s missing key or listing id", evt.JobID)
		jobLogger.Warn("invalid job event")
		process.MarkFailed(job, err)
		state.addEvent(schema.StageFailed, err, schema.FailureTypeValidation)
		publishDone(nc, cfg.ResultSubject, state, nil, "", err, schema.FailureTypeValidation)
		return err
	}
	state.addEvent(schema.StageValidation, nil, "")

	kind := classifyJob(evt)
	state.kind = kind

	generator, err := thumb.ForKind(kind)
	if err != nil {
		jobLogger.Warn("unsupported media", "file_name", evt.FileName, "file_type", evt.FileType, "err", err)
		process.MarkFailed(job, err)
		failureType := classifyError(err)
		state.addEvent(schema.StageFailed, err, failureType)
		publishDone(nc, cfg.ResultSubject, state, nil, "", err, failureType)
		return err
	}
	jobLogger.Info("using generator", "generator", generator.Name(), "kind", kind)

	process.MarkRunning(job)
	state.addEvent(schema.StageProcessing, nil, "")
	publishLifecycle(nc, cfg.ResultSubject, state.lifecycle[len(state.lifecycle)-1])

	srcPath, cleanup, err := objects.Download(ctx, evt.Key)
	if err != nil {
		jobLogger.Error("download source failed", "err", err)
		process.MarkFailed(job, err)
		failureType := classifyError(err)
		state.addEvent(schema.StageFailed, err, failureType)
		publishDone(nc, cfg.ResultSubject, state, nil, "", err, failureType)
		return fmt.Errorf("download source: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			jobLogger.Warn("cleanup source failed", "err", err)
		}
	}()

	thumbKey := media.ThumbnailURL(evt.Key)
	if evt.IsCover {
		thumbKey = media.CoverThumbnailURL(evt.Key)
	}
	dstPath := filepath.Join(cfg.ThumbDir, evt.JobID+"_"+filepath.Base(thumbKey))

	out, err := generator.Generate(ctx, srcPath, dstPath)
	if err != nil {
		jobLogger.Error("thumbnail generation failed", "err", err)
		process.MarkFailed(job, err)
		failureType := classifyError(err)
		state.addEvent(schema.StageFailed, err, failureType)
		publishDone(nc, cfg.ResultSubject, state, nil, "", err, failureType)
		return fmt.Errorf("generate thumbnail: %w", err)
	}
	jobLogger.Info("thumbnail generated", "path", out.Path, "size_bytes", out.SizeBytes, "dims", fmt.Sprintf("%dx%d", out.Width, out.Height))

	state.addEvent(schema.StageUpload, nil, "")
	publishLifecycle(nc, cfg.ResultSubject, state.lifecycle[len(state.lifecycle)-1])

	if err := objects.Upload(ctx, thumbKey, out.Path, ""); err != nil {
		jobLogger.Error("upload thumbnail failed", "thumb_key", thumbKey, "err", err)
		process.MarkFailed(job, err)
		failureType := classifyError(err)
		state.addEvent(schema.StageFailed, err, failureType)
		publishDone(nc, cfg.ResultSubject, state, &out, thumbKey, err, failureType)
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	if err := os.Remove(out.Path); err != nil {
		jobLogger.Warn("failed to cleanup thumbnail file", "path", out.Path, "err", err)
	}

	thumbURL := objects.URLFor(thumbKey)
	if evt.IsCover && listings != nil {
		if err := listings.SetCoverThumbnail(ctx, evt.ListingID, thumbURL); err != nil {
			// The thumbnail is stored; record upgrade can be retried by a
			// later backfill pass, so the job still completes.
			jobLogger.Warn("cover thumbnail record upgrade failed", "err", err)
		} else {
			jobLogger.Info("listing upgraded to modern shape", "cover_thumbnail_url", thumbURL)
		}
	}

	process.MarkSucceeded(job)
	state.addEvent(schema.StageCompleted, nil, "")
	publishDone(nc, cfg.ResultSubject, state, &out, thumbKey, nil, "")
	jobLogger.Info("completed job", "thumb_key", thumbKey, "processing_time_ms", job.DurationMs())
	return nil
}

// classifyJob picks the media kind for a job, preferring the file name
// (keys for local videos may carry the marker prefix instead of an
// extension) and falling back to the declared MIME type when the name is
// unclassifiable.
func classifyJob(evt schema.MediaUploaded) media.Kind {
	identifier := evt.FileName
	if identifier == "" {
		identifier = evt.Key
	}
	kind := media.Classify(identifier)
	if kind == media.KindUnknown {
		kind = media.KindFromMime(evt.FileType)
	}
	return kind
}

type jobState struct {
	evt       schema.MediaUploaded
	kind      media.Kind
	start     time.Time
	lifecycle []schema.ThumbnailLifecycleEvent
}

func newJobState(evt schema.MediaUploaded) *jobState {
	return &jobState{evt: evt, start: time.Now()}
}

func (s *jobState) addEvent(stage schema.ProcessingStage, err error, failureType schema.FailureType) {
	event := schema.ThumbnailLifecycleEvent{
		JobID:      s.evt.JobID,
		ListingID:  s.evt.ListingID,
		Stage:      stage,
		HappenedAt: time.Now().Unix(),
	}
	if stage == schema.StageProcessing {
		event.ProcessingStart = s.start.UnixMilli()
	} else if stage == schema.StageCompleted || stage == schema.StageFailed {
		event.ProcessingStart = s.start.UnixMilli()
		event.ProcessingEnd = time.Now().UnixMilli()
	}
	if err != nil {
		event.Error = err.Error()
		event.FailureType = failureType
	}
	s.lifecycle = append(s.lifecycle, event)
}

func publishLifecycle(nc *bus.Client, subject string, event schema.ThumbnailLifecycleEvent) {
	if err := nc.PublishJSON(subject+".lifecycle", event); err != nil {
		slog.Error("publish lifecycle event failed", "subject", subject, "stage", event.Stage, "err", err)
	}
}

func publishDone(nc *bus.Client, subject string, state *jobState, out *thumb.Output, thumbKey string, cause error, failureType schema.FailureType) {
	done := schema.ThumbnailDone{
		JobID:            state.evt.JobID,
		ListingID:        state.evt.ListingID,
		MediaID:          state.evt.MediaID,
		SourceKey:        state.evt.Key,
		ThumbnailKey:     thumbKey,
		ProcessingTimeMs: time.Since(state.start).Milliseconds(),
		Lifecycle:        state.lifecycle,
		HappenedAt:       time.Now().Unix(),
	}
	if out != nil {
		done.Width = out.Width
		done.Height = out.Height
		done.SizeBytes = out.SizeBytes
		done.Derivation = &schema.DerivationParams{
			SourceWidth:  out.SourceWidth,
			SourceHeight: out.SourceHeight,
			TargetWidth:  out.Width,
			TargetHeight: out.Height,
			MediaKind:    string(state.kind),
			GeneratedAt:  time.Now().Unix(),
		}
	}
	if cause != nil {
		done.Error = cause.Error()
		done.FailureType = failureType
	}

	if err := nc.PublishJSON(subject, done); err != nil {
		slog.Error("publish result failed", "subject", subject, "job_id", state.evt.JobID, "err", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func loadConfig() (config, error) {
	cfg := config{
		NATSURL:       getenv("NATS_URL", "nats://127.0.0.1:4222"),
		JobSubject:    getenv("JOB_SUBJECT", "property.media.uploaded"),
		WorkerQueue:   getenv("WORKER_QUEUE", "media-workers"),
		ResultSubject: getenv("RESULT_SUBJECT", "property.media.thumbnail.done"),
		ThumbDir:      getenv("THUMB_DIR", "./data/thumbs"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		S3: store.S3Config{
			Endpoint:        getenv("S3_ENDPOINT", ""),
			Region:          getenv("S3_REGION", "us-east-1"),
			AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getenv("S3_BUCKET", ""),
			PublicBaseURL:   getenv("S3_PUBLIC_BASE_URL", ""),
			UsePathStyle:    getenv("S3_USE_PATH_STYLE", "") == "true",
		},
	}

	if cfg.S3.Bucket == "" {
		return config{}, fmt.Errorf("S3_BUCKET is required")
	}

	timeoutSecs, err := parsePositiveInt(getenv("JOB_TIMEOUT_SECONDS", "60"), "JOB_TIMEOUT_SECONDS")
	if err != nil {
		return config{}, err
	}
	cfg.JobTimeout = time.Duration(timeoutSecs) * time.Second

	return cfg, nil
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
