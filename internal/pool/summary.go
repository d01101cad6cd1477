package pool

import "time"

// FailedJob carries enough identity to retry one failed job manually.
type FailedJob struct {
	SectionLabel string `json:"section"`
	Title        string `json:"title"`
	LectureID    string `json:"lecture_id"`
	Reason       string `json:"reason"`
}

// RunSummary is the machine-readable outcome of one pool run. It is only
// meaningful after every worker has closed.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Remaining  int           `json:"remaining"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	FailedJobs []FailedJob   `json:"failed_jobs,omitempty"`
}
