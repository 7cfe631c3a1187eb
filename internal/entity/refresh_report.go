package entity

import "time"

// RefreshFailure describes a competitor whose extraction failed during a refresh pass.
type RefreshFailure struct {
	CompetitorID string
	URL          string
	Reason       string
}

// RefreshReport summarizes a single refresh pass over all competitors.
type RefreshReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Updated    int
	Failed     int
	Skipped    int // competitors deleted while the pass was running
	Failures   []RefreshFailure
}
