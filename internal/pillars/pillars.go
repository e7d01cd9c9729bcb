// Package pillars implements the five scoring dimensions. Each scorer
// consumes the shared crawl inputs, runs its checks, and returns a
// ModuleResult whose score is the sum of its check scores.
package pillars

import (
	"context"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/parse"
)

// Inputs carries everything fetched and parsed ahead of scoring. All five
// scorers read from the same snapshot so a scan is internally consistent.
type Inputs struct {
	Crawl   *domain.CrawlResult
	Content *parse.PageContent
	Schema  *parse.SchemaData
	Sitemap fetch.SitemapData
	Robots  fetch.RobotsData
	Wayback fetch.WaybackData
	Crux    fetch.CruxData
	// Now anchors the date-sensitive checks so they are reproducible.
	Now time.Time
}

// Geocoder resolves a postal address to map coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, address string) fetch.GeocodeResult
}

// LinkChecker probes a URL for liveness.
type LinkChecker interface {
	Alive(ctx context.Context, target string) bool
}

// Scorer is one pillar's scoring routine.
type Scorer interface {
	Pillar() domain.Pillar
	Score(ctx context.Context, in Inputs) domain.ModuleResult
}

// newResult builds a ModuleResult from accumulated checks, deriving the
// score from the checks themselves.
func newResult(
	pillar domain.Pillar,
	signals any,
	checks []domain.CheckResult,
	recs []domain.Recommendation,
) domain.ModuleResult {
	result := domain.ModuleResult{
		Pillar:          pillar,
		MaxPoints:       domain.PillarMaxPoints[pillar],
		Signals:         signals,
		Checks:          checks,
		Recommendations: recs,
	}
	result.Score = result.SumChecks()
	return result
}
