// Package scoring combines the five pillar results into the overall
// 0-100 score and letter grade.
package scoring

import (
	"math"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// PillarScore is one pillar's contribution to the total.
type PillarScore struct {
	Score      int `json:"score"`
	MaxPoints  int `json:"max_points"`
	Percentage int `json:"percentage"`
}

// Result is the combined outcome of a scan's scoring pass.
type Result struct {
	TotalScore   int                           `json:"total_score"`
	Grade        string                        `json:"grade"`
	PillarScores map[domain.Pillar]PillarScore `json:"pillar_scores"`
}

// gradeThresholds maps minimum scores to grades, highest first.
var gradeThresholds = []struct {
	min   int
	grade string
	label string
}{
	{90, "A+", "Excellent"},
	{80, "A", "Great"},
	{70, "B+", "Good"},
	{60, "B", "Above Average"},
	{50, "C+", "Average"},
	{40, "C", "Below Average"},
	{30, "D", "Poor"},
	{0, "F", "Needs Attention"},
}

// Grade converts a total score to its letter grade.
func Grade(score int) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return "F"
}

// GradeLabel converts a total score to its plain-language rating.
func GradeLabel(score int) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.label
		}
	}
	return "Needs Attention"
}

// Calculate sums the pillar scores into the overall result. The total is
// clamped to [0, 100]; given the fixed pillar budgets, the clamp only
// matters if a scorer misbehaves.
func Calculate(results map[domain.Pillar]domain.ModuleResult) Result {
	pillarScores := make(map[domain.Pillar]PillarScore, len(results))
	total := 0

	for pillar, r := range results {
		percentage := 0
		if r.MaxPoints > 0 {
			percentage = int(math.Round(float64(r.Score) / float64(r.MaxPoints) * 100))
		}
		pillarScores[pillar] = PillarScore{
			Score:      r.Score,
			MaxPoints:  r.MaxPoints,
			Percentage: percentage,
		}
		total += r.Score
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return Result{
		TotalScore:   total,
		Grade:        Grade(total),
		PillarScores: pillarScores,
	}
}
