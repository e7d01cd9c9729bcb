package pillars_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/pillars"
)

func freshInputs() pillars.Inputs {
	lastMod := fixedNow.AddDate(0, 0, -7)
	in := baseInputs()
	in.Wayback = fetch.WaybackData{Available: true, Captures: 14}
	in.Sitemap = fetch.SitemapData{
		Exists:  true,
		Entries: []fetch.SitemapEntry{{Loc: "https://acme.example/", LastMod: &lastMod}},
	}
	in.Content.InternalLinks = []string{
		"https://acme.example/about",
		"https://acme.example/services",
	}
	in.Crawl.HTML = fmt.Sprintf(
		`<html><body><p>Updated August 12, %d.</p><footer>Copyright %d Acme</footer></body></html>`,
		fixedNow.Year(), fixedNow.Year(),
	)
	return in
}

func TestFreshnessScorer_FullCredit(t *testing.T) {
	t.Parallel()

	scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
	result := scorer.Score(context.Background(), freshInputs())

	assert.Equal(t, 20, result.Score)
	assert.Empty(t, result.Recommendations)
}

func TestFreshnessScorer_ChangeFrequencyTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		captures int
		want     int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{6, 3},
		{11, 3},
		{12, 5},
		{40, 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%d captures", tt.captures), func(t *testing.T) {
			t.Parallel()

			in := freshInputs()
			in.Wayback.Captures = tt.captures

			scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
			result := scorer.Score(context.Background(), in)

			assert.Equal(t, tt.want, checkByID(t, result, "wayback_change_frequency").Score)
			if tt.want < 3 {
				assert.True(t, hasRecommendation(result, "improve_update_frequency"))
			}
		})
	}
}

func TestFreshnessScorer_SitemapRecency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		daysAgo int
		want    int
	}{
		{"this month", 10, 4},
		{"this quarter", 60, 2},
		{"stale", 200, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mod := fixedNow.AddDate(0, 0, -tt.daysAgo)
			in := freshInputs()
			in.Sitemap.Entries = []fetch.SitemapEntry{{Loc: "https://acme.example/", LastMod: &mod}}

			scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
			result := scorer.Score(context.Background(), in)

			assert.Equal(t, tt.want, checkByID(t, result, "sitemap_recent_lastmod").Score)
		})
	}
}

func TestFreshnessScorer_SitemapWithoutLastMod(t *testing.T) {
	t.Parallel()

	in := freshInputs()
	in.Sitemap.Entries = []fetch.SitemapEntry{{Loc: "https://acme.example/"}}

	scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
	result := scorer.Score(context.Background(), in)

	check := checkByID(t, result, "sitemap_recent_lastmod")
	assert.Zero(t, check.Score)
	assert.Contains(t, check.Details, "no lastmod dates")
	assert.True(t, hasRecommendation(result, "update_sitemap_lastmod"))
}

func TestFreshnessScorer_BrokenLinks(t *testing.T) {
	t.Parallel()

	in := freshInputs()

	// One of the two sampled links is dead: 50% working earns 1 point.
	scorer := pillars.NewFreshnessScorer(stubLinks{
		aliveByDefault: true,
		dead:           map[string]bool{"https://acme.example/about": true},
	})
	result := scorer.Score(context.Background(), in)

	check := checkByID(t, result, "no_broken_links")
	assert.Equal(t, 1, check.Score)
	assert.False(t, check.Passed)
	assert.True(t, hasRecommendation(result, "fix_broken_links"))
}

func TestFreshnessScorer_NoLinksIsNeutral(t *testing.T) {
	t.Parallel()

	in := freshInputs()
	in.Content.InternalLinks = nil

	scorer := pillars.NewFreshnessScorer(stubLinks{})
	result := scorer.Score(context.Background(), in)

	check := checkByID(t, result, "no_broken_links")
	assert.Equal(t, 2, check.Score)
	assert.Equal(t, "No internal links found to check", check.Details)
	// No samples, no fix to recommend.
	assert.False(t, hasRecommendation(result, "fix_broken_links"))
}

func TestFreshnessScorer_CopyrightYear(t *testing.T) {
	t.Parallel()

	year := fixedNow.Year()
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"current year", fmt.Sprintf("<footer>&copy; %d Acme</footer>", year), true},
		{"previous year", fmt.Sprintf("<footer>Copyright %d Acme</footer>", year-1), true},
		{"range ending current", fmt.Sprintf("<footer>© 2015-%d Acme</footer>", year), true},
		{"stale", "<footer>Copyright 2019 Acme</footer>", false},
		{"absent", "<footer>Acme</footer>", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := freshInputs()
			in.Crawl.HTML = tt.html

			scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
			result := scorer.Score(context.Background(), in)

			assert.Equal(t, tt.want, checkByID(t, result, "copyright_year_current").Passed)
			if !tt.want {
				assert.True(t, hasRecommendation(result, "update_copyright_year"))
			}
		})
	}
}

func TestFreshnessScorer_RecentDates(t *testing.T) {
	t.Parallel()

	year := fixedNow.Year()
	in := freshInputs()
	in.Crawl.HTML = fmt.Sprintf(
		"<html><body>Posted January 5, %d. Updated %d-06-01. Archived June 2, 2015.</body></html>",
		year, year,
	)

	scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
	result := scorer.Score(context.Background(), in)

	check := checkByID(t, result, "page_has_dates")
	assert.True(t, check.Passed)
	assert.Contains(t, check.Details, "Found 2 date(s)")
}

func TestFreshnessScorer_NowAnchorsDateChecks(t *testing.T) {
	t.Parallel()

	// The same page scored against a Now two years later goes stale.
	in := freshInputs()
	later := in.Now.AddDate(2, 0, 0)
	in.Now = later

	scorer := pillars.NewFreshnessScorer(stubLinks{aliveByDefault: true})
	result := scorer.Score(context.Background(), in)

	assert.False(t, checkByID(t, result, "copyright_year_current").Passed)
	assert.False(t, checkByID(t, result, "page_has_dates").Passed)
	assert.Zero(t, checkByID(t, result, "sitemap_recent_lastmod").Score)
}
