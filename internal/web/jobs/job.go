package jobs

import (
	"context"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/pkg/types"
)

// JobStatus represents the current state of a scan job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job represents an async scan run.
type Job struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	Category    string        `json:"category"`
	Status      JobStatus     `json:"status"`
	Report      *types.Report `json:"report,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   time.Time     `json:"started_at,omitempty"`
	CompletedAt time.Time     `json:"completed_at,omitempty"`

	cfg    config.Config
	cancel context.CancelFunc
}

// FindingCount returns the number of findings in the report, if any.
func (j Job) FindingCount() int {
	if j.Report == nil {
		return 0
	}
	return len(j.Report.Findings)
}
