package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Kind is the declared record kind of an ingestion job.
type Kind string

const (
	KindRegistry    Kind = "registry-numbers"
	KindSuppression Kind = "suppression-commodities"
	KindSales       Kind = "sales-transactions"
)

// ParseKind accepts the canonical kind names and the short aliases used on
// the command line.
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindRegistry), "registry", "dnc", "txt":
		return KindRegistry, nil
	case string(KindSuppression), "suppression":
		return KindSuppression, nil
	case string(KindSales), "sales":
		return KindSales, nil
	default:
		return "", eris.Errorf("unknown record kind: %q (valid: registry, suppression, sales)", s)
	}
}

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CanTransition reports whether the job may move from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobQueued:
		return next == JobProcessing || next == JobFailed
	case JobProcessing:
		return next == JobProcessing || next == JobCompleted || next == JobFailed
	default:
		return false
	}
}

// Job identifies one ingestion run.
type Job struct {
	ID         string     `json:"job_id"`
	Path       string     `json:"file_path"`
	Kind       Kind       `json:"kind"`
	Status     JobStatus  `json:"status"`
	Current    int64      `json:"current"`
	Total      int64      `json:"total"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
