// Package scoring computes multi-factor match scores and the independent
// ghost-job heuristic for normalised listings.
package scoring

import (
	"fmt"
	"strings"
	"time"

	"jobradar/pipeline-service/internal/model"
)

// Sub-score weights. They sum to 1.0 so the breakdown components sum to the
// total score.
const (
	weightSkills   = 0.35
	weightSalary   = 0.20
	weightLocation = 0.20
	weightCompany  = 0.10
	weightRecency  = 0.15
)

// ContextVersion identifies the scoring-context generation. It salts the
// score-cache key so changing scoring inputs invalidates cached scores
// without an explicit purge.
const ContextVersion = "v1"

// Profile is the search profile a record is scored against.
type Profile struct {
	Skills             []string
	Locations          []string
	RemoteOK           bool
	SalaryTarget       float64
	PreferredCompanies []string
	AlertThreshold     float64 // in [0,1]
}

// Engine scores records against a fixed Profile. Stateless and safe for
// concurrent use.
type Engine struct {
	profile Profile
}

// NewEngine creates an Engine for the given profile.
func NewEngine(profile Profile) *Engine {
	return &Engine{profile: profile}
}

// Score computes the weighted match score for a record. The returned
// breakdown components always sum to Total within floating-point tolerance.
func (e *Engine) Score(rec *model.Record) model.Score {
	var s model.Score

	s.Breakdown.Skills = weightSkills * e.skillsFactor(rec, &s)
	s.Breakdown.Salary = weightSalary * e.salaryFactor(rec, &s)
	s.Breakdown.Location = weightLocation * e.locationFactor(rec, &s)
	s.Breakdown.Company = weightCompany * e.companyFactor(rec, &s)
	s.Breakdown.Recency = weightRecency * recencyFactor(rec, &s)

	s.Total = s.Breakdown.Skills + s.Breakdown.Salary +
		s.Breakdown.Location + s.Breakdown.Company + s.Breakdown.Recency
	return s
}

// ShouldAlertImmediately reports whether total meets the alert threshold.
func (e *Engine) ShouldAlertImmediately(total float64) bool {
	return total >= e.profile.AlertThreshold
}

func (e *Engine) skillsFactor(rec *model.Record, s *model.Score) float64 {
	if len(e.profile.Skills) == 0 {
		return 1.0
	}

	text := strings.ToLower(rec.Title + " " + rec.Description)
	matched := 0
	for _, skill := range e.profile.Skills {
		if strings.Contains(text, strings.ToLower(skill)) {
			matched++
		}
	}
	if matched > 0 {
		s.Reasons = append(s.Reasons,
			fmt.Sprintf("matches %d/%d skills", matched, len(e.profile.Skills)))
	}
	return float64(matched) / float64(len(e.profile.Skills))
}

func (e *Engine) salaryFactor(rec *model.Record, s *model.Score) float64 {
	if e.profile.SalaryTarget <= 0 {
		return 1.0
	}
	if rec.SalaryMin == nil && rec.SalaryMax == nil {
		s.Reasons = append(s.Reasons, "salary not disclosed")
		return 0.5
	}

	mid := salaryMidpoint(rec)
	if mid >= e.profile.SalaryTarget {
		s.Reasons = append(s.Reasons, "salary meets target")
		return 1.0
	}
	s.Reasons = append(s.Reasons, "salary below target")
	return mid / e.profile.SalaryTarget
}

func (e *Engine) locationFactor(rec *model.Record, s *model.Score) float64 {
	if rec.Remote && e.profile.RemoteOK {
		s.Reasons = append(s.Reasons, "remote role")
		return 1.0
	}
	if len(e.profile.Locations) == 0 {
		return 1.0
	}

	loc := strings.ToLower(rec.Location)
	for _, want := range e.profile.Locations {
		if loc != "" && strings.Contains(loc, strings.ToLower(want)) {
			s.Reasons = append(s.Reasons, fmt.Sprintf("location matches %q", want))
			return 1.0
		}
	}
	return 0.0
}

func (e *Engine) companyFactor(rec *model.Record, s *model.Score) float64 {
	company := strings.ToLower(rec.Company)
	for _, want := range e.profile.PreferredCompanies {
		if company == strings.ToLower(want) {
			s.Reasons = append(s.Reasons, "preferred company")
			return 1.0
		}
	}
	// Staffing-agency style listings score low: they rarely represent the
	// hiring company directly.
	for _, term := range []string{"staffing", "recruiting", "recruitment", "talent solutions"} {
		if strings.Contains(company, term) {
			s.Reasons = append(s.Reasons, "staffing-agency listing")
			return 0.0
		}
	}
	return 0.5
}

func recencyFactor(rec *model.Record, s *model.Score) float64 {
	if rec.PostedAt == nil {
		return 0.5
	}

	age := time.Since(*rec.PostedAt)
	switch {
	case age <= 48*time.Hour:
		s.Reasons = append(s.Reasons, "posted within 2 days")
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.75
	case age <= 30*24*time.Hour:
		return 0.4
	default:
		s.Reasons = append(s.Reasons, "posting older than 30 days")
		return 0.1
	}
}

func salaryMidpoint(rec *model.Record) float64 {
	switch {
	case rec.SalaryMin != nil && rec.SalaryMax != nil:
		return (*rec.SalaryMin + *rec.SalaryMax) / 2
	case rec.SalaryMin != nil:
		return *rec.SalaryMin
	default:
		return *rec.SalaryMax
	}
}
