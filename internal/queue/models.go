package queue

import "time"

// Status represents the lifecycle of a queued job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one lecture to capture and assemble. Built from the manifest before
// the pool starts, claimed by exactly one worker, then recorded as completed
// or failed.
type Job struct {
	ID           int64
	Position     int64
	SectionLabel string
	Title        string
	LectureID    string
	SourceURL    string

	// DiscoveredVideoID is filled in once the per-job pipeline observes the
	// player's video identifier.
	DiscoveredVideoID string

	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the human-readable identity of a job, enough to retry it
// manually.
func (j *Job) Identity() string {
	return j.SectionLabel + " / " + j.Title + " (" + j.LectureID + ")"
}

// Summary aggregates job counts for one run.
type Summary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
