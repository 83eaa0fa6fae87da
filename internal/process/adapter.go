// internal/process/adapter.go
package process

import "time"

// JobStatus represents the lifecycle state of a processing job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job captures the minimal metadata the worker tracks per thumbnail job
// for auditing purposes.
type Job struct {
	ID         string
	ListingID  string
	SourceKey  string
	Status     JobStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

func NewJob(id, listingID, sourceKey string) *Job {
	return &Job{
		ID:        id,
		ListingID: listingID,
		SourceKey: sourceKey,
		Status:    JobStatusPending,
	}
}

func MarkRunning(j *Job) {
	j.Status = JobStatusRunning
	j.StartedAt = time.Now()
}

func MarkSucceeded(j *Job) {
	j.Status = JobStatusSucceeded
	j.FinishedAt = time.Now()
}

func MarkFailed(j *Job, err error) {
	j.Status = JobStatusFailed
	j.FinishedAt = time.Now()
	if err != nil {
		j.Error = err.Error()
	}
}

// DurationMs is the job's wall time in milliseconds, zero until it has run.
func (j *Job) DurationMs() int64 {
	if j.StartedAt.IsZero() {
		return 0
	}
	end := j.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(j.StartedAt).Milliseconds()
}
