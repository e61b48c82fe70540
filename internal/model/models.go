// Package model defines shared data structures for the pipeline service.
package model

import "time"

// Record is one normalised job listing observation. The identity hash is
// assigned once by the pipeline from the normalised (company, title,
// location, url) tuple and is the sole deduplication key across sources
// and cycles. It is serialised to JSON when stored in job_listings.raw_data.
type Record struct {
	IdentityHash string     `json:"identityHash"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	URL          string     `json:"url"`
	Location     string     `json:"location,omitempty"`
	Description  string     `json:"description,omitempty"`
	Source       string     `json:"source"`
	Remote       bool       `json:"remote,omitempty"`
	SalaryMin    *float64   `json:"salaryMin,omitempty"`
	SalaryMax    *float64   `json:"salaryMax,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	PostedAt     *time.Time `json:"postedAt,omitempty"`

	// Populated by the scoring engine and ghost detector during a cycle.
	Score *Score       `json:"score,omitempty"`
	Ghost *GhostReport `json:"ghost,omitempty"`

	// Maintained by the persistence gateway.
	RepostCount int       `json:"repostCount"`
	TimesSeen   int       `json:"timesSeen"`
	AlertSent   bool      `json:"alertSent"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	LastSeenAt  time.Time `json:"lastSeenAt,omitempty"`
}

// ScoreBreakdown holds the weighted sub-scores that make up a total match
// score. The components always sum to Total (within floating-point tolerance).
type ScoreBreakdown struct {
	Skills   float64 `json:"skills"`
	Salary   float64 `json:"salary"`
	Location float64 `json:"location"`
	Company  float64 `json:"company"`
	Recency  float64 `json:"recency"`
}

// Score is the result of scoring one record against the configured profile.
type Score struct {
	Total     float64        `json:"total"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reasons   []string       `json:"reasons,omitempty"`
}

// GhostReport is the ghost-job heuristic verdict for one record. Score is in
// [0,1]; values at or above the likely-ghost threshold flag the listing for
// the UI. Ghost-flagged records are still persisted and may still alert.
type GhostReport struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// GhostThreshold is the likely-ghost decision boundary.
const GhostThreshold = 0.5

// LikelyGhost reports whether the heuristic considers the listing non-genuine.
func (g *GhostReport) LikelyGhost() bool {
	return g != nil && g.Score >= GhostThreshold
}

// ChannelOutcome records the result of one channel delivery attempt during a
// single alert dispatch. Skipped marks channels that were enabled but had no
// credentials configured; they never count as delivery failures.
type ChannelOutcome struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PipelineRunResult aggregates the counters for one full pipeline cycle.
// Created fresh per cycle and kept only for logging and the /stats endpoint.
type PipelineRunResult struct {
	RunID          string    `json:"runId"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	RecordsFound   int       `json:"recordsFound"`
	RecordsNew     int       `json:"recordsNew"`
	RecordsUpdated int       `json:"recordsUpdated"`
	HighMatches    int       `json:"highMatches"`
	AlertsSent     int       `json:"alertsSent"`
	Errors         []string  `json:"errors,omitempty"`
}
