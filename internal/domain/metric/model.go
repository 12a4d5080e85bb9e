package metric

import "time"

// Record is one immutable timestamped observation of a project's metrics.
// A nil count means "could not be determined this cycle"; readers carry the
// last non-nil value forward instead of treating nil as zero.
type Record struct {
	ProjectID   string    `json:"project_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	Words       *int      `json:"word_count"`
	Pages       *int      `json:"page_count"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	CycleID     string    `json:"cycle_id,omitempty"`
}

// HistoryOptions filters a project's metric history.
type HistoryOptions struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

// Summary is the dashboard view of a project's progress: the last non-nil
// value per metric, day-over-day deltas, and staleness markers for metrics
// whose most recent record carried no value.
type Summary struct {
	ProjectID       string     `json:"project_id"`
	Name            string     `json:"name"`
	Words           *int       `json:"word_count"`
	Pages           *int       `json:"page_count"`
	WordsDelta      int        `json:"word_count_delta"`
	PagesDelta      int        `json:"page_count_delta"`
	WordsStaleSince *time.Time `json:"word_count_stale_since,omitempty"`
	PagesStaleSince *time.Time `json:"page_count_stale_since,omitempty"`
	LastRecorded    *time.Time `json:"last_recorded,omitempty"`
	Measurements    int        `json:"measurements"`
}
