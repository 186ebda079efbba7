package websocket

import "github.com/mediagrab/backend/internal/job"

const messageTypeJobUpdate = "job_update"

// ProgressTracker bridges orchestrator job writes onto the hub. It
// satisfies the orchestrator's notifier contract and never blocks.
type ProgressTracker struct {
	hub *Hub
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(hub *Hub) *ProgressTracker {
	return &ProgressTracker{hub: hub}
}

// JobUpdated pushes one job state change to that job's watchers.
func (pt *ProgressTracker) JobUpdated(rec job.Record) {
	pt.hub.Broadcast(recordMessage(rec))
}

// HasWatchers checks if a job has any active WebSocket connections.
func (pt *ProgressTracker) HasWatchers(jobID string) bool {
	return pt.hub.WatcherCount(jobID) > 0
}

func recordMessage(rec job.Record) *JobMessage {
	return &JobMessage{
		Type:     messageTypeJobUpdate,
		JobID:    rec.ID,
		Status:   rec.Status,
		Progress: rec.Progress,
		Result:   rec.Result,
		Error:    rec.Error,
	}
}
