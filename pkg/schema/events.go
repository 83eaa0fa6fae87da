// pkg/schema/events.go
package schema

// MediaUploaded is the job event the worker consumes: an original listing
// asset has landed in object storage and needs a thumbnail.
type MediaUploaded struct {
	JobID      string `json:"job_id"`
	ListingID  string `json:"listing_id"`
	MediaID    string `json:"media_id,omitempty"`
	Key        string `json:"key"`
	FileName   string `json:"file_name,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	IsCover    bool   `json:"is_cover"`
	HappenedAt int64  `json:"happened_at"`
}

type ProcessingStage string

const (
	StageValidation ProcessingStage = "validation"
	StageProcessing ProcessingStage = "processing"
	StageUpload     ProcessingStage = "upload"
	StageCompleted  ProcessingStage = "completed"
	StageFailed     ProcessingStage = "failed"
)

type FailureType string

const (
	FailureTypeRetryable  FailureType = "retryable"
	FailureTypePermanent  FailureType = "permanent"
	FailureTypeValidation FailureType = "validation"
)

// DerivationParams records how a thumbnail was produced.
type DerivationParams struct {
	SourceWidth    int    `json:"source_width"`
	SourceHeight   int    `json:"source_height"`
	TargetWidth    int    `json:"target_width"`
	TargetHeight   int    `json:"target_height"`
	MediaKind      string `json:"media_kind"`
	Quality        int    `json:"quality,omitempty"`
	ProcessingTime int64  `json:"processing_time_ms"`
	GeneratedAt    int64  `json:"generated_at"`
}

// ThumbnailLifecycleEvent traces one stage of a job for observers.
type ThumbnailLifecycleEvent struct {
	JobID           string          `json:"job_id"`
	ListingID       string          `json:"listing_id"`
	Stage           ProcessingStage `json:"stage"`
	ProcessingStart int64           `json:"processing_start,omitempty"`
	ProcessingEnd   int64           `json:"processing_end,omitempty"`
	Error           string          `json:"error,omitempty"`
	FailureType     FailureType     `json:"failure_type,omitempty"`
	HappenedAt      int64           `json:"happened_at"`
}

// ThumbnailDone is the terminal result event for one MediaUploaded job.
type ThumbnailDone struct {
	JobID            string                    `json:"job_id"`
	ListingID        string                    `json:"listing_id"`
	MediaID          string                    `json:"media_id,omitempty"`
	SourceKey        string                    `json:"source_key"`
	ThumbnailKey     string                    `json:"thumbnail_key,omitempty"`
	ThumbnailURL     string                    `json:"thumbnail_url,omitempty"`
	Width            int                       `json:"width,omitempty"`
	Height           int                       `json:"height,omitempty"`
	SizeBytes        int64                     `json:"size_bytes,omitempty"`
	ProcessingTimeMs int64                     `json:"processing_time_ms"`
	Derivation       *DerivationParams         `json:"derivation,omitempty"`
	Lifecycle        []ThumbnailLifecycleEvent `json:"lifecycle,omitempty"`
	Error            string                    `json:"error,omitempty"`
	FailureType      FailureType               `json:"failure_type,omitempty"`
	HappenedAt       int64                     `json:"happened_at"`
}
