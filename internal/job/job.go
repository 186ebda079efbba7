package job

import (
	"time"
)

// Status values a job moves through. A record's status sequence is always a
// subsequence of queued -> starting -> downloading* -> (completed | error).
type Status string

const (
	StatusQueued      Status = "queued"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	// StatusFinished is reported by the fetch engine when its transfer ends.
	// It is never persisted: the orchestrator's own completion write is
	// authoritative and would race with it.
	StatusFinished  Status = "finished"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	// StatusNotFound is the sentinel returned for absent or expired jobs.
	StatusNotFound Status = "not_found"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Progress is the payload present only while a job is downloading.
type Progress struct {
	Percent    int    `json:"percent"`
	Downloaded int64  `json:"downloaded"`
	Total      int64  `json:"total"`
	Speed      string `json:"speed,omitempty"`
	ETA        string `json:"eta,omitempty"`
}

// Result is the payload present only once a job has completed.
type Result struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// Record is one job's externally visible state. At most one of Progress,
// Result and Error is populated, consistent with Status; the constructors
// below are the only way records are built.
type Record struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Progress  *Progress `json:"progress,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal returns true if the record is in a terminal state.
func (r Record) IsTerminal() bool {
	return r.Status.IsTerminal()
}

func Queued(id string) Record {
	return Record{ID: id, Status: StatusQueued, UpdatedAt: time.Now()}
}

func Starting(id string) Record {
	return Record{ID: id, Status: StatusStarting, UpdatedAt: time.Now()}
}

func Downloading(id string, p Progress) Record {
	return Record{ID: id, Status: StatusDownloading, Progress: &p, UpdatedAt: time.Now()}
}

func Completed(id string, res Result) Record {
	return Record{ID: id, Status: StatusCompleted, Result: &res, UpdatedAt: time.Now()}
}

func Failed(id string, msg string) Record {
	return Record{ID: id, Status: StatusError, Error: msg, UpdatedAt: time.Now()}
}

// NotFound is the record returned for an absent or expired job id.
func NotFound(id string) Record {
	return Record{ID: id, Status: StatusNotFound}
}
