package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/recommend"
)

func rec(id string, points int, impact domain.Impact, difficulty domain.Difficulty) domain.Recommendation {
	return domain.Recommendation{
		ID:                id,
		Title:             id,
		Impact:            impact,
		Difficulty:        difficulty,
		PointsRecoverable: points,
		HowToFix:          "detailed fix for " + id,
	}
}

func TestRank_OrdersByPayoff(t *testing.T) {
	t.Parallel()

	results := map[domain.Pillar]domain.ModuleResult{
		// Payoffs: big-low 10, mid-medium 8, small-high 6.
		domain.PillarEntityVerifiability: {Recommendations: []domain.Recommendation{
			rec("small-high", 2, domain.ImpactHigh, domain.DifficultyEasy),
			rec("big-low", 10, domain.ImpactLow, domain.DifficultyEasy),
			rec("mid-medium", 4, domain.ImpactMedium, domain.DifficultyEasy),
		}},
	}

	ranked := recommend.Rank(results, recommend.TierPro)

	require.Len(t, ranked, 3)
	assert.Equal(t, "big-low", ranked[0].ID)
	assert.Equal(t, "mid-medium", ranked[1].ID)
	assert.Equal(t, "small-high", ranked[2].ID)
}

func TestRank_EasierWinsTies(t *testing.T) {
	t.Parallel()

	results := map[domain.Pillar]domain.ModuleResult{
		domain.PillarTrustRisk: {Recommendations: []domain.Recommendation{
			rec("hard", 3, domain.ImpactHigh, domain.DifficultyHard),
			rec("easy", 3, domain.ImpactHigh, domain.DifficultyEasy),
			rec("moderate", 3, domain.ImpactHigh, domain.DifficultyModerate),
		}},
	}

	ranked := recommend.Rank(results, recommend.TierPro)

	require.Len(t, ranked, 3)
	assert.Equal(t, "easy", ranked[0].ID)
	assert.Equal(t, "moderate", ranked[1].ID)
	assert.Equal(t, "hard", ranked[2].ID)
}

func TestRank_StableAcrossPillarOrder(t *testing.T) {
	t.Parallel()

	// Identical payoff and difficulty: pillar order breaks the tie, and it
	// must do so the same way every run.
	results := map[domain.Pillar]domain.ModuleResult{
		domain.PillarAnswerabilityCoverage: {Recommendations: []domain.Recommendation{
			rec("from-answerability", 2, domain.ImpactMedium, domain.DifficultyEasy),
		}},
		domain.PillarEntityVerifiability: {Recommendations: []domain.Recommendation{
			rec("from-entity", 2, domain.ImpactMedium, domain.DifficultyEasy),
		}},
	}

	for i := 0; i < 10; i++ {
		ranked := recommend.Rank(results, recommend.TierPro)
		require.Len(t, ranked, 2)
		assert.Equal(t, "from-entity", ranked[0].ID)
		assert.Equal(t, "from-answerability", ranked[1].ID)
	}
}

func TestRank_FreeTierCapsAndStrips(t *testing.T) {
	t.Parallel()

	var recs []domain.Recommendation
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		recs = append(recs, rec(id, 3, domain.ImpactHigh, domain.DifficultyEasy))
	}
	results := map[domain.Pillar]domain.ModuleResult{
		domain.PillarExtractabilitySchema: {Recommendations: recs},
	}

	ranked := recommend.Rank(results, recommend.TierFree)

	require.Len(t, ranked, 5)
	for _, r := range ranked {
		assert.Empty(t, r.HowToFix)
	}

	// Paid tiers keep everything, detail included.
	full := recommend.Rank(results, recommend.TierDIY)
	require.Len(t, full, 7)
	assert.NotEmpty(t, full[0].HowToFix)
}

func TestQuickWins(t *testing.T) {
	t.Parallel()

	recs := []domain.Recommendation{
		rec("easy-high", 3, domain.ImpactHigh, domain.DifficultyEasy),
		rec("easy-low", 3, domain.ImpactLow, domain.DifficultyEasy),
		rec("hard-high", 3, domain.ImpactHigh, domain.DifficultyHard),
		rec("easy-medium", 3, domain.ImpactMedium, domain.DifficultyEasy),
	}

	wins := recommend.QuickWins(recs)

	require.Len(t, wins, 2)
	assert.Equal(t, "easy-high", wins[0].ID)
	assert.Equal(t, "easy-medium", wins[1].ID)
}

func TestTotalRecoverablePoints(t *testing.T) {
	t.Parallel()

	recs := []domain.Recommendation{
		rec("a", 3, domain.ImpactHigh, domain.DifficultyEasy),
		rec("b", 5, domain.ImpactLow, domain.DifficultyHard),
	}
	assert.Equal(t, 8, recommend.TotalRecoverablePoints(recs))
	assert.Zero(t, recommend.TotalRecoverablePoints(nil))
}
