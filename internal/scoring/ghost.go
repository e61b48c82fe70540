package scoring

import (
	"fmt"
	"time"

	"jobradar/pipeline-service/internal/model"
)

// Ghost-signal contributions. The combined score is clamped to [0,1];
// model.GhostThreshold marks the likely-ghost boundary.
const (
	ghostRepostHeavy   = 0.35 // reposted three or more times
	ghostRepostLight   = 0.15 // reposted at least once
	ghostNoSalary      = 0.15
	ghostNoLocation    = 0.10
	ghostStalePosting  = 0.25 // older than staleAge
	ghostManyOpenHeavy = 0.25 // company has manyOpenHeavyAt+ concurrent openings
	ghostManyOpenLight = 0.10

	staleAge        = 45 * 24 * time.Hour
	repostHeavyAt   = 3
	manyOpenHeavyAt = 20
	manyOpenLightAt = 10
)

// GhostDetector evaluates listings for ghost-job signals. It annotates, never
// filters: flagged records are still persisted and may still alert.
type GhostDetector struct{}

// NewGhostDetector creates a GhostDetector.
func NewGhostDetector() *GhostDetector {
	return &GhostDetector{}
}

// Analyze combines repost history, missing-field evasiveness, posting age and
// the company's concurrent open-job count into a ghost score in [0,1].
func (d *GhostDetector) Analyze(rec *model.Record, repostCount, companyOpenJobs int) model.GhostReport {
	var rep model.GhostReport

	switch {
	case repostCount >= repostHeavyAt:
		rep.Score += ghostRepostHeavy
		rep.Reasons = append(rep.Reasons, fmt.Sprintf("reposted %d times", repostCount))
	case repostCount >= 1:
		rep.Score += ghostRepostLight
		rep.Reasons = append(rep.Reasons, "previously reposted")
	}

	if rec.SalaryMin == nil && rec.SalaryMax == nil {
		rep.Score += ghostNoSalary
		rep.Reasons = append(rep.Reasons, "no salary disclosed")
	}
	if rec.Location == "" && !rec.Remote {
		rep.Score += ghostNoLocation
		rep.Reasons = append(rep.Reasons, "no location given")
	}

	if rec.PostedAt != nil && time.Since(*rec.PostedAt) > staleAge {
		rep.Score += ghostStalePosting
		rep.Reasons = append(rep.Reasons, "posting is stale")
	}

	switch {
	case companyOpenJobs >= manyOpenHeavyAt:
		rep.Score += ghostManyOpenHeavy
		rep.Reasons = append(rep.Reasons,
			fmt.Sprintf("company has %d open listings", companyOpenJobs))
	case companyOpenJobs >= manyOpenLightAt:
		rep.Score += ghostManyOpenLight
		rep.Reasons = append(rep.Reasons, "company has unusually many open listings")
	}

	if rep.Score > 1.0 {
		rep.Score = 1.0
	}
	return rep
}
