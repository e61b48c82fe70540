package scoring_test

import (
	"math"
	"testing"
	"time"

	"jobradar/pipeline-service/internal/model"
	"jobradar/pipeline-service/internal/scoring"
)

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestScore_BreakdownSumsToTotal(t *testing.T) {
	engine := scoring.NewEngine(scoring.Profile{
		Skills:       []string{"go", "kubernetes", "postgres"},
		Locations:    []string{"berlin"},
		RemoteOK:     true,
		SalaryTarget: 90000,
	})

	recent := time.Now().Add(-24 * time.Hour)
	old := time.Now().Add(-60 * 24 * time.Hour)
	records := []*model.Record{
		{Title: "Go Engineer", Company: "Acme", Description: "go kubernetes postgres", Remote: true,
			SalaryMin: floatPtr(95000), SalaryMax: floatPtr(120000), PostedAt: timePtr(recent)},
		{Title: "Designer", Company: "Blank Co", Location: "paris"},
		{Title: "Backend Engineer", Company: "Midway Staffing", Description: "go",
			SalaryMin: floatPtr(50000), PostedAt: timePtr(old)},
		{},
	}

	for i, rec := range records {
		s := engine.Score(rec)
		sum := s.Breakdown.Skills + s.Breakdown.Salary + s.Breakdown.Location +
			s.Breakdown.Company + s.Breakdown.Recency
		if math.Abs(sum-s.Total) > 1e-3 {
			t.Errorf("record %d: breakdown sum %v != total %v", i, sum, s.Total)
		}
		if s.Total < 0 || s.Total > 1 {
			t.Errorf("record %d: total %v outside [0,1]", i, s.Total)
		}
	}
}

func TestScore_StrongMatchOutranksWeak(t *testing.T) {
	engine := scoring.NewEngine(scoring.Profile{
		Skills:   []string{"go"},
		RemoteOK: true,
	})

	strong := engine.Score(&model.Record{Title: "Go Engineer", Company: "Acme", Remote: true})
	weak := engine.Score(&model.Record{Title: "Accountant", Company: "Acme"})
	if strong.Total <= weak.Total {
		t.Errorf("strong match %v should outrank weak match %v", strong.Total, weak.Total)
	}
}

func TestScore_UndisclosedSalaryGivesReason(t *testing.T) {
	engine := scoring.NewEngine(scoring.Profile{SalaryTarget: 80000})
	s := engine.Score(&model.Record{Title: "Engineer", Company: "Acme"})

	found := false
	for _, r := range s.Reasons {
		if r == "salary not disclosed" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v should mention undisclosed salary", s.Reasons)
	}
}

func TestShouldAlertImmediately(t *testing.T) {
	engine := scoring.NewEngine(scoring.Profile{AlertThreshold: 0.8})
	cases := []struct {
		total float64
		want  bool
	}{
		{0.79, false},
		{0.8, true},
		{0.95, true},
	}
	for _, c := range cases {
		if got := engine.ShouldAlertImmediately(c.total); got != c.want {
			t.Errorf("ShouldAlertImmediately(%v) = %v, want %v", c.total, got, c.want)
		}
	}
}
