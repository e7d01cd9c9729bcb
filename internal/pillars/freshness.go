package pillars

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// maxLinkSamples caps how many internal links get a liveness probe.
const maxLinkSamples = 10

// neutralLinkScore is awarded when the page has no internal links to check.
const neutralLinkScore = 2

var copyrightRe = regexp.MustCompile(`(?i)(?:copyright|&copy;|\x{00A9})\s*(?:\d{4}\s*[-\x{2013}]\s*)?(\d{4})`)

var contentDateRe = regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2}`)

var yearRe = regexp.MustCompile(`\d{4}`)

// FreshnessSignals is the raw evidence behind the freshness score.
type FreshnessSignals struct {
	WaybackCaptures  int    `json:"wayback_captures"`
	SitemapLatestMod string `json:"sitemap_latest_mod,omitempty"`
	BrokenLinksFound int    `json:"broken_links_found"`
	LinksChecked     int    `json:"links_checked"`
	CopyrightYear    int    `json:"copyright_year,omitempty"`
	RecentDatesFound int    `json:"recent_dates_found"`
}

// FreshnessScorer measures whether the site looks actively maintained:
// archive history, sitemap recency, working links, and dated content.
type FreshnessScorer struct {
	links LinkChecker
}

// NewFreshnessScorer creates the freshness scorer.
func NewFreshnessScorer(links LinkChecker) *FreshnessScorer {
	return &FreshnessScorer{links: links}
}

// Pillar identifies the dimension this scorer covers.
func (s *FreshnessScorer) Pillar() domain.Pillar { return domain.PillarFreshnessMaintenance }

// Score runs the freshness checks.
func (s *FreshnessScorer) Score(ctx context.Context, in Inputs) domain.ModuleResult {
	var checks []domain.CheckResult
	var recs []domain.Recommendation

	// Archive history exists.
	hasCaptures := in.Wayback.Captures > 0
	checks = append(checks, domain.CheckResult{
		ID:       "wayback_has_captures",
		Label:    "Site Has History",
		Passed:   hasCaptures,
		Score:    points(hasCaptures, 2),
		MaxScore: 2,
		Details: pickDetails(hasCaptures,
			fmt.Sprintf("Found %d archived version(s) in the last year", in.Wayback.Captures),
			"No archived versions found in the last year"),
	})

	// Change frequency over the last year.
	changeFreqScore := 0
	switch {
	case in.Wayback.Captures >= 12:
		changeFreqScore = 5
	case in.Wayback.Captures >= 6:
		changeFreqScore = 3
	case in.Wayback.Captures >= 2:
		changeFreqScore = 1
	}
	checks = append(checks, domain.CheckResult{
		ID:       "wayback_change_frequency",
		Label:    "Update Frequency",
		Passed:   changeFreqScore >= 3,
		Score:    changeFreqScore,
		MaxScore: 5,
		Details: fmt.Sprintf("%d unique content changes detected in the last 12 months",
			in.Wayback.Captures),
	})
	if changeFreqScore < 3 {
		recs = append(recs, domain.Recommendation{
			ID:    "improve_update_frequency",
			Title: "Update Your Website More Often",
			Description: "AI systems prefer websites that are actively maintained. Your " +
				"site appears to rarely change, which signals to AI that the information " +
				"might be outdated.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 5 - changeFreqScore,
			HowToFix: "Aim to update your website content at least once per month. Add " +
				"blog posts, update your FAQ, refresh service descriptions, or post news " +
				"about your business.",
		})
	}

	// Sitemap shows recent updates.
	sitemapFreshnessScore := 0
	latestMod := ""
	if len(in.Sitemap.Entries) > 0 && in.Sitemap.Entries[0].LastMod != nil {
		mod := *in.Sitemap.Entries[0].LastMod
		latestMod = mod.Format("2006-01-02")
		daysSinceMod := int(in.Now.Sub(mod).Hours() / 24)

		switch {
		case daysSinceMod <= 30:
			sitemapFreshnessScore = 4
		case daysSinceMod <= 90:
			sitemapFreshnessScore = 2
		}

		checks = append(checks, domain.CheckResult{
			ID:       "sitemap_recent_lastmod",
			Label:    "Sitemap Shows Recent Updates",
			Passed:   sitemapFreshnessScore >= 2,
			Score:    sitemapFreshnessScore,
			MaxScore: 4,
			Details:  fmt.Sprintf("Most recent sitemap update: %d day(s) ago", daysSinceMod),
		})
	} else {
		checks = append(checks, domain.CheckResult{
			ID:       "sitemap_recent_lastmod",
			Label:    "Sitemap Shows Recent Updates",
			Passed:   false,
			Score:    0,
			MaxScore: 4,
			Details: pickDetails(in.Sitemap.Exists,
				"Sitemap exists but has no lastmod dates",
				"No sitemap found to check freshness"),
		})
	}
	if sitemapFreshnessScore < 2 {
		recs = append(recs, domain.Recommendation{
			ID:    "update_sitemap_lastmod",
			Title: "Keep Your Sitemap Up to Date",
			Description: "Your sitemap doesn't show recent updates. This tells AI systems " +
				"your site hasn't changed lately, making them less likely to use your content.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 4 - sitemapFreshnessScore,
			HowToFix: "Make sure your sitemap.xml includes <lastmod> dates and that they " +
				"update when you change pages. Most CMS platforms handle this automatically.",
		})
	}

	// Sampled internal links work.
	samples := in.Content.InternalLinks
	if len(samples) > maxLinkSamples {
		samples = samples[:maxLinkSamples]
	}

	brokenLinkScore := neutralLinkScore
	workingLinks := 0
	if len(samples) > 0 {
		workingLinks = s.countWorkingLinks(ctx, samples)
		total := len(samples)
		switch {
		case workingLinks == total:
			brokenLinkScore = 4
		case float64(workingLinks) >= float64(total)*0.8:
			brokenLinkScore = 3
		case float64(workingLinks) >= float64(total)*0.5:
			brokenLinkScore = 1
		default:
			brokenLinkScore = 0
		}
	}
	checks = append(checks, domain.CheckResult{
		ID:       "no_broken_links",
		Label:    "Internal Links Working",
		Passed:   brokenLinkScore >= 3,
		Score:    brokenLinkScore,
		MaxScore: 4,
		Details: pickDetails(len(samples) > 0,
			fmt.Sprintf("%d/%d sampled internal links are working", workingLinks, len(samples)),
			"No internal links found to check"),
	})
	if brokenLinkScore < 3 && len(samples) > 0 {
		recs = append(recs, domain.Recommendation{
			ID:    "fix_broken_links",
			Title: "Fix Broken Links on Your Site",
			Description: "Some links on your website lead to pages that don't exist. " +
				"Broken links make your site look abandoned and untrustworthy to AI.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 4 - brokenLinkScore,
			HowToFix: "Check all the links on your website and fix or remove any that " +
				"lead to error pages. Tools like \"Broken Link Checker\" can help you find them.",
		})
	}

	// Copyright year is current.
	currentYear := in.Now.Year()
	copyrightYear := 0
	if m := copyrightRe.FindStringSubmatch(in.Crawl.HTML); m != nil {
		copyrightYear, _ = strconv.Atoi(m[1])
	}
	copyrightCurrent := copyrightYear == currentYear || copyrightYear == currentYear-1
	copyrightDetails := "No copyright year found"
	if copyrightYear != 0 {
		copyrightDetails = fmt.Sprintf("Copyright year: %d", copyrightYear)
	}
	checks = append(checks, domain.CheckResult{
		ID:       "copyright_year_current",
		Label:    "Copyright Year Current",
		Passed:   copyrightCurrent,
		Score:    points(copyrightCurrent, 2),
		MaxScore: 2,
		Details:  copyrightDetails,
	})
	if !copyrightCurrent {
		desc := "No copyright year was found in your footer. Adding one shows your site " +
			"is actively maintained."
		if copyrightYear != 0 {
			desc = fmt.Sprintf("Your footer shows %d. An outdated copyright year is the "+
				"first thing that tells AI (and visitors) your site might be abandoned.",
				copyrightYear)
		}
		recs = append(recs, domain.Recommendation{
			ID:                "update_copyright_year",
			Title:             "Update Your Copyright Year",
			Description:       desc,
			Impact:            domain.ImpactLow,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2,
			HowToFix: fmt.Sprintf("Update the copyright year in your website footer to %d. "+
				"Better yet, set it to update automatically each year.", currentYear),
		})
	}

	// Content carries recent dates.
	recentDates := countRecentDates(in.Crawl.HTML, currentYear)
	hasRecentDates := recentDates > 0
	checks = append(checks, domain.CheckResult{
		ID:       "page_has_dates",
		Label:    "Content Has Recent Dates",
		Passed:   hasRecentDates,
		Score:    points(hasRecentDates, 3),
		MaxScore: 3,
		Details: pickDetails(hasRecentDates,
			fmt.Sprintf("Found %d date(s) from %d-%d", recentDates, currentYear-1, currentYear),
			"No recent dates found in content"),
	})
	if !hasRecentDates {
		recs = append(recs, domain.Recommendation{
			ID:    "add_recent_dates",
			Title: "Add Dates to Your Content",
			Description: "Your website doesn't show any recent dates. Adding \"last " +
				"updated\" dates or blog post dates shows AI that your information is current.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add a \"Last updated\" date to your important pages (services, " +
				"pricing, FAQ). Consider adding a blog or news section with dated posts.",
		})
	}

	signals := FreshnessSignals{
		WaybackCaptures:  in.Wayback.Captures,
		SitemapLatestMod: latestMod,
		BrokenLinksFound: len(samples) - workingLinks,
		LinksChecked:     len(samples),
		CopyrightYear:    copyrightYear,
		RecentDatesFound: recentDates,
	}

	return newResult(s.Pillar(), signals, checks, recs)
}

// countWorkingLinks probes the sampled links concurrently.
func (s *FreshnessScorer) countWorkingLinks(ctx context.Context, links []string) int {
	var wg sync.WaitGroup
	alive := make([]bool, len(links))

	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			alive[i] = s.links.Alive(ctx, link)
		}(i, link)
	}
	wg.Wait()

	working := 0
	for _, ok := range alive {
		if ok {
			working++
		}
	}
	return working
}

// countRecentDates counts dates in the page (long-form or ISO) whose year
// is the current or previous one.
func countRecentDates(html string, currentYear int) int {
	count := 0
	for _, match := range contentDateRe.FindAllString(html, -1) {
		yearStr := yearRe.FindString(match)
		if yearStr == "" {
			continue
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		if year >= currentYear-1 {
			count++
		}
	}
	return count
}
