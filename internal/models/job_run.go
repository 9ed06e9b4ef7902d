package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobRunStatus is the lifecycle state of one batch run.
type JobRunStatus string

const (
	// JobRunStatusRunning marks a run that has started and not finished.
	JobRunStatusRunning JobRunStatus = "running"
	// JobRunStatusSucceeded marks a run that completed without error.
	JobRunStatusSucceeded JobRunStatus = "succeeded"
	// JobRunStatusFailed marks a run that aborted with an error.
	JobRunStatusFailed JobRunStatus = "failed"
)

// JobRun records one execution of a batch job for bookkeeping. Chunks
// written before a failure stay persisted, so the row is the only place
// a partially-successful run is visible after the fact.
type JobRun struct {
	// ID is a ULID; lexical order matches start order.
	ID string `gorm:"primarykey;size:26" json:"id"`

	// JobName is the catalog name of the executed job.
	JobName string `gorm:"not null;size:64;index" json:"job_name"`

	// Parameters snapshots the JobParameter map the run was invoked with.
	Parameters map[string]string `gorm:"serializer:json" json:"parameters,omitempty"`

	Status JobRunStatus `gorm:"not null;size:16" json:"status"`

	// ItemsWritten counts items handed to the writer across all chunks.
	ItemsWritten int `json:"items_written"`

	// Error holds the failure message for failed runs.
	Error string `gorm:"size:2048" json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName returns the table name for the JobRun model.
func (JobRun) TableName() string {
	return "job_runs"
}

// NewJobRunID generates a new ULID run identifier.
func NewJobRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
