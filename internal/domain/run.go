package domain

import "time"

// Run records one engine invocation: type, status and aggregate counters.
type Run struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`   // update, import, export
	Status    string    `json:"status"` // running, done, failed, canceled
	Locale    string    `json:"locale"`
	Paths     int       `json:"paths"`
	PathsDone int       `json:"paths_done"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunLog is one human-readable progress line attached to a run.
type RunLog struct {
	ID      int64     `json:"id"`
	RunID   int64     `json:"run_id"`
	Time    time.Time `json:"ts"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}
