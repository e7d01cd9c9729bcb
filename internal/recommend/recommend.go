// Package recommend ranks the recommendations collected from the pillar
// scorers and applies tier-based gating.
package recommend

import (
	"sort"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// freeTierLimit is how many recommendations free-tier viewers see.
const freeTierLimit = 5

// Tier is a subscription level. It controls how much recommendation
// detail a scan response carries.
type Tier string

// Subscription tiers.
const (
	TierFree       Tier = "free"
	TierMonitoring Tier = "monitoring"
	TierDIY        Tier = "diy"
	TierPro        Tier = "pro"
)

// Rank collects every pillar's recommendations and orders them by expected
// payoff: points recoverable times impact weight, descending, with easier
// fixes winning ties. The sort is stable, so equal recommendations keep
// their pillar order and the ranking is deterministic.
func Rank(results map[domain.Pillar]domain.ModuleResult, tier Tier) []domain.Recommendation {
	var all []domain.Recommendation
	for _, pillar := range domain.Pillars {
		if r, ok := results[pillar]; ok {
			all = append(all, r.Recommendations...)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		scoreI := all[i].PointsRecoverable * all[i].Impact.Weight()
		scoreJ := all[j].PointsRecoverable * all[j].Impact.Weight()
		if scoreI != scoreJ {
			return scoreI > scoreJ
		}
		return all[i].Difficulty.Rank() < all[j].Difficulty.Rank()
	})

	if tier == TierFree {
		if len(all) > freeTierLimit {
			all = all[:freeTierLimit]
		}
		// Free tier sees what is wrong but not the remediation detail.
		stripped := make([]domain.Recommendation, len(all))
		for i, r := range all {
			r.HowToFix = ""
			stripped[i] = r
		}
		return stripped
	}

	return all
}

// QuickWins filters for the fixes worth doing first: easy, and more than
// low impact.
func QuickWins(recs []domain.Recommendation) []domain.Recommendation {
	var wins []domain.Recommendation
	for _, r := range recs {
		if r.Difficulty == domain.DifficultyEasy && r.Impact != domain.ImpactLow {
			wins = append(wins, r)
		}
	}
	return wins
}

// TotalRecoverablePoints sums the points the recommendations could win back.
func TotalRecoverablePoints(recs []domain.Recommendation) int {
	total := 0
	for _, r := range recs {
		total += r.PointsRecoverable
	}
	return total
}
