package domain

// Impact classifies how much a recommendation is expected to move the score.
type Impact string

// Recommendation impact tiers.
const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Weight returns the multiplier used when ranking recommendations.
func (i Impact) Weight() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	default:
		return 1
	}
}

// Difficulty classifies how hard a recommendation is to act on.
type Difficulty string

// Recommendation difficulty tiers.
const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// Rank returns the tie-break ordering for difficulty: easy sorts before
// moderate, moderate before hard.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyModerate:
		return 1
	default:
		return 2
	}
}

// CheckResult is one atomic scoring unit within a pillar.
// Invariant: 0 <= Score <= MaxScore.
type CheckResult struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Passed   bool   `json:"passed"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Details  string `json:"details,omitempty"`
}

// Recommendation is one actionable fix derived from a failing check.
// PointsRecoverable equals the gap between the check's MaxScore and its
// awarded Score (or a documented partial amount).
type Recommendation struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Impact            Impact     `json:"impact"`
	Difficulty        Difficulty `json:"difficulty"`
	Pillar            Pillar     `json:"pillar"`
	PointsRecoverable int        `json:"points_recoverable"`
	// HowToFix carries the detailed remediation text. It is stripped for
	// free-tier viewers.
	HowToFix string `json:"how_to_fix,omitempty"`
}

// ModuleResult is the output of one pillar scorer.
// Invariants: Score == sum of Checks[].Score and Score <= MaxPoints.
type ModuleResult struct {
	Pillar          Pillar           `json:"pillar"`
	Score           int              `json:"score"`
	MaxPoints       int              `json:"max_points"`
	Signals         any              `json:"signals"`
	Checks          []CheckResult    `json:"checks"`
	Recommendations []Recommendation `json:"recommendations"`
}

// SumChecks returns the total of the awarded check scores.
func (m *ModuleResult) SumChecks() int {
	total := 0
	for _, c := range m.Checks {
		total += c.Score
	}
	return total
}
