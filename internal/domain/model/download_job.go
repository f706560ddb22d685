package model

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus tracks where a download job is in the pipeline.
type JobStatus string

const (
	JobResolving  JobStatus = "resolving"
	JobFetching   JobStatus = "fetching"
	JobConverting JobStatus = "converting"
	JobTagging    JobStatus = "tagging"
	JobUploading  JobStatus = "uploading"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// DownloadJob is owned exclusively by the request that created it. Its temp
// files are removed at the end of the request regardless of outcome.
type DownloadJob struct {
	ID        string
	ChatID    int64
	Track     *Track
	Quality   Quality
	Status    JobStatus
	CreatedAt time.Time

	// Request-scoped temp paths, set as the pipeline advances.
	RawPath string // fetched source audio
	MP3Path string // converted + tagged output
}

// NewDownloadJob creates a job with a sortable unique ID.
func NewDownloadJob(chatID int64, track *Track, quality Quality) *DownloadJob {
	now := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return &DownloadJob{
		ID:        ulid.MustNew(ulid.Timestamp(now), entropy).String(),
		ChatID:    chatID,
		Track:     track,
		Quality:   quality,
		Status:    JobResolving,
		CreatedAt: now,
	}
}
