package pillars

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
)

// ExtractabilitySignals is the raw evidence behind the extractability score.
type ExtractabilitySignals struct {
	SchemaTypes     []string `json:"schema_types"`
	SitemapExists   bool     `json:"sitemap_exists"`
	SitemapURLCount int      `json:"sitemap_url_count"`
	RobotsExists    bool     `json:"robots_exists"`
	BlockedBots     []string `json:"blocked_bots"`
	HasCanonical    bool     `json:"has_canonical"`
	MetaDescLength  int      `json:"meta_desc_length"`
}

// ExtractabilityScorer measures how easily machines can read the site:
// structured data, crawler affordances, and extraction-friendly metadata.
type ExtractabilityScorer struct{}

// NewExtractabilityScorer creates the extractability scorer.
func NewExtractabilityScorer() *ExtractabilityScorer { return &ExtractabilityScorer{} }

// Pillar identifies the dimension this scorer covers.
func (s *ExtractabilityScorer) Pillar() domain.Pillar { return domain.PillarExtractabilitySchema }

// Score runs the extractability checks.
func (s *ExtractabilityScorer) Score(_ context.Context, in Inputs) domain.ModuleResult {
	var checks []domain.CheckResult
	var recs []domain.Recommendation

	// Any JSON-LD at all.
	hasJSONLD := len(in.Schema.Blocks) > 0
	jsonLDDetails := "No JSON-LD structured data found on the page"
	if hasJSONLD {
		jsonLDDetails = fmt.Sprintf("Found %d structured data block(s): %s",
			len(in.Schema.Blocks), strings.Join(in.Schema.Types, ", "))
	}
	checks = append(checks, domain.CheckResult{
		ID:       "has_any_jsonld",
		Label:    "Structured Data Found",
		Passed:   hasJSONLD,
		Score:    points(hasJSONLD, 3),
		MaxScore: 3,
		Details:  jsonLDDetails,
	})
	if !hasJSONLD {
		recs = append(recs, domain.Recommendation{
			ID:    "add_structured_data",
			Title: "Add Structured Data to Your Site",
			Description: "Structured data is like a cheat sheet for AI. It tells machines " +
				"exactly what your business is, what you offer, and how to find you. Without " +
				"it, AI has to guess, and it usually skips you.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add a JSON-LD script tag to your homepage. At minimum, include " +
				"Organization or LocalBusiness schema with your business details.",
		})
	}

	// Breadcrumb schema.
	hasBreadcrumb := in.Schema.BreadcrumbList != nil
	checks = append(checks, domain.CheckResult{
		ID:       "has_breadcrumb_schema",
		Label:    "Breadcrumb Schema",
		Passed:   hasBreadcrumb,
		Score:    points(hasBreadcrumb, 2),
		MaxScore: 2,
		Details:  pickDetails(hasBreadcrumb, "BreadcrumbList schema found", "No BreadcrumbList schema found"),
	})
	if !hasBreadcrumb {
		recs = append(recs, domain.Recommendation{
			ID:    "add_breadcrumb_schema",
			Title: "Add Breadcrumb Schema",
			Description: "Breadcrumb schema helps AI understand how your pages connect to " +
				"each other. It makes your site structure clear and easy to navigate.",
			Impact:            domain.ImpactLow,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2,
			HowToFix: "Add BreadcrumbList JSON-LD schema that shows the hierarchy of your " +
				"pages (Home > Services > Specific Service).",
		})
	}

	// FAQ schema.
	hasFAQSchema := in.Schema.FAQPage != nil
	checks = append(checks, domain.CheckResult{
		ID:       "has_faq_schema",
		Label:    "FAQ Schema",
		Passed:   hasFAQSchema,
		Score:    points(hasFAQSchema, 3),
		MaxScore: 3,
		Details:  pickDetails(hasFAQSchema, "FAQPage schema found", "No FAQPage schema found"),
	})
	if !hasFAQSchema {
		recs = append(recs, domain.Recommendation{
			ID:    "add_faq_schema",
			Title: "Add FAQ Schema Markup",
			Description: "FAQ schema is one of the most powerful ways to show up in AI " +
				"answers. When someone asks \"How much does X cost?\" or \"What are your " +
				"hours?\", FAQ schema makes your answers easy for AI to find and cite.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Create a FAQ section on your page with common questions and answers, " +
				"then wrap it in FAQPage JSON-LD schema markup.",
		})
	}

	// Declared schema parses cleanly. A page with no schema passes
	// trivially; a page with ld+json tags must yield at least one type.
	schemaValid := len(in.Schema.Blocks) == 0 || len(in.Schema.Types) > 0
	checks = append(checks, domain.CheckResult{
		ID:       "schema_validates",
		Label:    "Schema Is Valid",
		Passed:   schemaValid,
		Score:    points(schemaValid, 2),
		MaxScore: 2,
		Details: pickDetails(schemaValid,
			"All structured data parsed successfully",
			"Some structured data blocks have errors"),
	})

	// Sitemap present.
	checks = append(checks, domain.CheckResult{
		ID:       "has_sitemap",
		Label:    "Sitemap Found",
		Passed:   in.Sitemap.Exists,
		Score:    points(in.Sitemap.Exists, 2),
		MaxScore: 2,
		Details: pickDetails(in.Sitemap.Exists,
			fmt.Sprintf("Sitemap found with %d URLs", len(in.Sitemap.Entries)),
			"No sitemap.xml found"),
	})
	if !in.Sitemap.Exists {
		recs = append(recs, domain.Recommendation{
			ID:    "add_sitemap",
			Title: "Create a Sitemap",
			Description: "A sitemap is a roadmap of your website. It tells search engines " +
				"and AI systems where all your pages are and when they were last updated.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2,
			HowToFix: "Create a sitemap.xml file and place it at the root of your website. " +
				"Most website builders (WordPress, Wix, Squarespace) can generate this " +
				"automatically.",
		})
	}

	// robots.txt present.
	checks = append(checks, domain.CheckResult{
		ID:       "has_robots_txt",
		Label:    "Robots.txt Found",
		Passed:   in.Robots.Exists,
		Score:    points(in.Robots.Exists, 2),
		MaxScore: 2,
		Details:  pickDetails(in.Robots.Exists, "robots.txt found", "No robots.txt found"),
	})

	// AI bots allowed.
	blockedBots := blockedBotNames(in.Robots)
	allowsAIBots := len(blockedBots) == 0
	botScore := 0
	switch {
	case allowsAIBots:
		botScore = 2
	case len(blockedBots) <= 2:
		botScore = 1
	}
	checks = append(checks, domain.CheckResult{
		ID:       "robots_allows_ai_bots",
		Label:    "AI Bots Allowed",
		Passed:   allowsAIBots,
		Score:    botScore,
		MaxScore: 2,
		Details: pickDetails(allowsAIBots,
			"All major AI bots are allowed to crawl your site",
			"Blocked bots: "+strings.Join(blockedBots, ", ")),
	})
	if !allowsAIBots {
		recs = append(recs, domain.Recommendation{
			ID:    "unblock_ai_bots",
			Title: "Allow AI Bots to Read Your Site",
			Description: fmt.Sprintf("Your robots.txt is blocking AI systems (%s) from "+
				"reading your site. If AI can't read your content, it can't recommend you.",
				strings.Join(blockedBots, ", ")),
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2 - botScore,
			HowToFix: "Edit your robots.txt file to remove blocks on GPTBot, " +
				"Google-Extended, CCBot, anthropic-ai, and PerplexityBot. If you didn't add " +
				"these blocks intentionally, your web host or security plugin may have.",
		})
	}

	// Canonical tag.
	hasCanonical := in.Content.CanonicalURL != ""
	checks = append(checks, domain.CheckResult{
		ID:       "has_canonical",
		Label:    "Canonical Tag Present",
		Passed:   hasCanonical,
		Score:    points(hasCanonical, 2),
		MaxScore: 2,
		Details: pickDetails(hasCanonical,
			"Canonical URL: "+in.Content.CanonicalURL,
			"No canonical tag found"),
	})

	// Meta description exists.
	hasMetaDesc := in.Content.MetaDescription != ""
	metaDetails := "No meta description found"
	if hasMetaDesc {
		metaDetails = fmt.Sprintf("Meta description: %q...", truncate(in.Content.MetaDescription, 80))
	}
	checks = append(checks, domain.CheckResult{
		ID:       "meta_description_exists",
		Label:    "Meta Description Present",
		Passed:   hasMetaDesc,
		Score:    points(hasMetaDesc, 1),
		MaxScore: 1,
		Details:  metaDetails,
	})

	// Meta description length.
	descLength := len(in.Content.MetaDescription)
	metaDescQuality := descLength >= 50 && descLength <= 160
	checks = append(checks, domain.CheckResult{
		ID:       "meta_description_quality",
		Label:    "Meta Description Length",
		Passed:   metaDescQuality,
		Score:    points(metaDescQuality, 1),
		MaxScore: 1,
		Details: pickDetails(hasMetaDesc,
			fmt.Sprintf("%d characters (ideal: 50-160)", descLength),
			"No meta description to evaluate"),
	})
	if hasMetaDesc && !metaDescQuality {
		recs = append(recs, domain.Recommendation{
			ID:    "fix_meta_description",
			Title: "Improve Your Meta Description",
			Description: fmt.Sprintf("Your meta description is %d characters. Aim for "+
				"50-160 characters for the best results in search and AI answers.", descLength),
			Impact:            domain.ImpactLow,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 1,
			HowToFix: "Write a concise description of your business (50-160 characters) " +
				"that answers the question \"What does this business do?\"",
		})
	}

	signals := ExtractabilitySignals{
		SchemaTypes:     in.Schema.Types,
		SitemapExists:   in.Sitemap.Exists,
		SitemapURLCount: len(in.Sitemap.Entries),
		RobotsExists:    in.Robots.Exists,
		BlockedBots:     blockedBots,
		HasCanonical:    hasCanonical,
		MetaDescLength:  descLength,
	}

	return newResult(s.Pillar(), signals, checks, recs)
}

// blockedBotNames lists the AI bots robots.txt disallows, in the canonical
// bot order so output is stable.
func blockedBotNames(robots fetch.RobotsData) []string {
	var blocked []string
	for _, bot := range fetch.AIBots {
		if allowed, ok := robots.BotAccess[bot]; ok && !allowed {
			blocked = append(blocked, bot)
		}
	}
	return blocked
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
