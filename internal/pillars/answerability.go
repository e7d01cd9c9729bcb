package pillars

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

var hoursPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:mon(?:day)?|tue(?:sday)?|wed(?:nesday)?|thu(?:rsday)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\b`),
	regexp.MustCompile(`(?i)\d{1,2}(?::\d{2})?\s*(?:am|pm)\s*[-\x{2013}to]+\s*\d{1,2}(?::\d{2})?\s*(?:am|pm)`),
	regexp.MustCompile(`(?i)open\s+(?:daily|24|hours)`),
	regexp.MustCompile(`(?i)business hours`),
	regexp.MustCompile(`(?i)hours of operation`),
}

var pricingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\d`),
	regexp.MustCompile(`(?i)\bpric(?:e|ing|es)\b`),
	regexp.MustCompile(`(?i)\bcost(?:s)?\b`),
	regexp.MustCompile(`(?i)\brat(?:e|es)\b`),
	regexp.MustCompile(`(?i)\bstarting\s+(?:at|from)\b`),
	regexp.MustCompile(`(?i)\bper\s+(?:month|hour|session|visit|person)\b`),
	regexp.MustCompile(`(?i)\bfree\s+(?:consultation|estimate|quote)\b`),
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blocated\s+(?:at|in|on)\b`),
	regexp.MustCompile(`(?i)\bour\s+(?:location|address|office)\b`),
	regexp.MustCompile(`(?i)\bvisit\s+us\b`),
	regexp.MustCompile(`(?i)\bget\s+directions\b`),
	regexp.MustCompile(`(?i)\bservice\s+area\b`),
	regexp.MustCompile(`(?i)\bserving\b`),
}

var contactPhoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

var contactEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var contactFormRe = regexp.MustCompile(`(?i)contact\s+(?:us|form)`)

var questionWordRe = regexp.MustCompile(`(?i)\b(?:how|what|why|when|where|does|can|is|do|should|will|who)\b`)

// serviceHeadingTerms mark a heading as describing an offering.
var serviceHeadingTerms = []string{
	"service", "what we", "our ", "offer", "product",
	"solution", "feature", "specialt", "treatment", "package",
}

// AnswerabilitySignals is the raw evidence behind the answerability score.
type AnswerabilitySignals struct {
	HasHours             bool `json:"has_hours"`
	HasPricing           bool `json:"has_pricing"`
	HasLocation          bool `json:"has_location"`
	ContactMethods       int  `json:"contact_methods"`
	FAQHeadingsCount     int  `json:"faq_headings_count"`
	HasFAQSchema         bool `json:"has_faq_schema"`
	ServiceHeadingsCount int  `json:"service_headings_count"`
	WordCount            int  `json:"word_count"`
	H1Count              int  `json:"h1_count"`
	H2Count              int  `json:"h2_count"`
}

// AnswerabilityScorer measures whether the page answers the questions
// people actually ask AI: hours, pricing, location, contact, FAQs, and
// service descriptions.
type AnswerabilityScorer struct{}

// NewAnswerabilityScorer creates the answerability scorer.
func NewAnswerabilityScorer() *AnswerabilityScorer { return &AnswerabilityScorer{} }

// Pillar identifies the dimension this scorer covers.
func (s *AnswerabilityScorer) Pillar() domain.Pillar { return domain.PillarAnswerabilityCoverage }

// Score runs the answerability checks.
func (s *AnswerabilityScorer) Score(_ context.Context, in Inputs) domain.ModuleResult {
	var checks []domain.CheckResult
	var recs []domain.Recommendation

	body := in.Content.BodyText

	// Business hours.
	hasHoursSchema := in.Schema.LocalBusiness.HasOpeningHours()
	hasHoursInContent := anyMatch(hoursPatterns, body)
	hasHours := hasHoursSchema || hasHoursInContent
	hoursDetails := "No business hours found"
	if hasHoursSchema {
		hoursDetails = "Hours found in schema markup and on page"
	} else if hasHoursInContent {
		hoursDetails = "Hours found on page"
	}
	checks = append(checks, domain.CheckResult{
		ID:       "has_business_hours",
		Label:    "Business Hours Listed",
		Passed:   hasHours,
		Score:    points(hasHours, 3),
		MaxScore: 3,
		Details:  hoursDetails,
	})
	if !hasHours {
		recs = append(recs, domain.Recommendation{
			ID:    "add_business_hours",
			Title: "Add Your Business Hours",
			Description: "\"What time are you open?\" is one of the most common questions " +
				"people ask AI. If your hours aren't on your website, AI can't answer, and " +
				"they'll recommend someone who does list them.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add your hours of operation to your homepage or contact page. " +
				"Format them clearly, like \"Monday-Friday: 9:00 AM - 5:00 PM\".",
		})
	}

	// Pricing.
	hasPricing := anyMatch(pricingPatterns, body)
	checks = append(checks, domain.CheckResult{
		ID:       "has_pricing_info",
		Label:    "Pricing Information",
		Passed:   hasPricing,
		Score:    points(hasPricing, 3),
		MaxScore: 3,
		Details: pickDetails(hasPricing,
			"Pricing or cost information found on page",
			"No pricing information found"),
	})
	if !hasPricing {
		recs = append(recs, domain.Recommendation{
			ID:    "add_pricing_info",
			Title: "Add Pricing Information",
			Description: "\"How much does it cost?\" is one of the first things people " +
				"ask AI. If your prices aren't on your site, AI will recommend competitors " +
				"who do show theirs.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add a pricing section or page to your website. Even \"Starting at " +
				"$X\" or \"Call for a free quote\" is better than nothing.",
		})
	}

	// Location.
	hasLocationSchema := in.Schema.LocalBusiness.Address() != ""
	hasLocation := hasLocationSchema || anyMatch(locationPatterns, body)
	checks = append(checks, domain.CheckResult{
		ID:       "has_location_info",
		Label:    "Location Information",
		Passed:   hasLocation,
		Score:    points(hasLocation, 3),
		MaxScore: 3,
		Details: pickDetails(hasLocation,
			"Location or service area information found",
			"No location information found"),
	})
	if !hasLocation {
		recs = append(recs, domain.Recommendation{
			ID:    "add_location_info",
			Title: "Add Your Location or Service Area",
			Description: "When people ask AI \"best [service] near me,\" your location " +
				"matters. Without it, AI has no idea where you are.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add your physical address or service area to your homepage. " +
				"Include it in both your schema markup and visible on the page.",
		})
	}

	// Contact methods.
	hasPhone := contactPhoneRe.MatchString(body)
	hasEmail := contactEmailRe.MatchString(body)
	hasForm := contactFormRe.MatchString(body)
	contactMethods := 0
	var methodNames []string
	if hasPhone {
		contactMethods++
		methodNames = append(methodNames, "phone")
	}
	if hasEmail {
		contactMethods++
		methodNames = append(methodNames, "email")
	}
	if hasForm {
		contactMethods++
		methodNames = append(methodNames, "contact form")
	}
	methodList := strings.Join(methodNames, ", ")
	if methodList == "" {
		methodList = "none"
	}
	hasContact := contactMethods >= 1
	checks = append(checks, domain.CheckResult{
		ID:       "has_contact_methods",
		Label:    "Contact Methods Available",
		Passed:   hasContact,
		Score:    points(hasContact, 2),
		MaxScore: 2,
		Details:  fmt.Sprintf("Found %d contact method(s): %s", contactMethods, methodList),
	})
	if !hasContact {
		recs = append(recs, domain.Recommendation{
			ID:    "add_contact_info",
			Title: "Add Contact Information",
			Description: "AI systems need to verify your business is reachable. A phone " +
				"number, email, or contact form is essential.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2,
			HowToFix: "Add your phone number and email address to your website, ideally " +
				"in the header or footer so it appears on every page.",
		})
	}

	// FAQ-style content.
	questionHeadings := 0
	for _, h := range append(append([]string{}, in.Content.H2s...), in.Content.H3s...) {
		if questionWordRe.MatchString(h) {
			questionHeadings++
		}
	}
	hasFAQSchema := in.Schema.FAQPage != nil
	hasFAQContent := questionHeadings >= 2 || hasFAQSchema || in.Content.DetailsWithSummary > 0
	faqScore := 0
	switch {
	case hasFAQContent:
		faqScore = 3
	case questionHeadings == 1:
		faqScore = 1
	}
	faqDetails := "No FAQ-style content found"
	if hasFAQContent {
		faqDetails = fmt.Sprintf("Found %d question-style headings", questionHeadings)
		if hasFAQSchema {
			faqDetails += " (with FAQ schema)"
		}
	}
	checks = append(checks, domain.CheckResult{
		ID:       "has_faq_content",
		Label:    "FAQ Content Present",
		Passed:   hasFAQContent,
		Score:    faqScore,
		MaxScore: 3,
		Details:  faqDetails,
	})
	if !hasFAQContent {
		recs = append(recs, domain.Recommendation{
			ID:    "add_faq_content",
			Title: "Add a FAQ Section",
			Description: "AI answers are built from questions and answers. A FAQ section " +
				"on your site gives AI ready-made answers to recommend. This is one of the " +
				"easiest wins for AI visibility.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add a FAQ section to your homepage or create a dedicated FAQ page. " +
				"Include 5-10 common questions your customers ask, with clear and concise " +
				"answers.",
		})
	}

	// Service descriptions.
	serviceHeadings := 0
	for _, h := range append(append([]string{}, in.Content.H2s...), in.Content.H3s...) {
		lower := strings.ToLower(h)
		for _, term := range serviceHeadingTerms {
			if strings.Contains(lower, term) {
				serviceHeadings++
				break
			}
		}
	}
	hasServices := serviceHeadings >= 1
	checks = append(checks, domain.CheckResult{
		ID:       "has_service_descriptions",
		Label:    "Service Descriptions",
		Passed:   hasServices,
		Score:    points(hasServices, 3),
		MaxScore: 3,
		Details: pickDetails(hasServices,
			fmt.Sprintf("Found %d service-related section(s)", serviceHeadings),
			"No clear service or product descriptions found"),
	})
	if !hasServices {
		recs = append(recs, domain.Recommendation{
			ID:    "add_service_descriptions",
			Title: "Describe Your Services Clearly",
			Description: "AI needs to understand what you do to recommend you. Without " +
				"clear descriptions of your services or products, AI can't match you to " +
				"what people are looking for.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add sections with headings like \"Our Services\" or \"What We " +
				"Offer\" followed by a short description of each service.",
		})
	}

	// Enough content to work with.
	wordCount := in.Content.WordCount
	sufficient := wordCount >= 300
	lengthScore := 0
	switch {
	case sufficient:
		lengthScore = 2
	case wordCount >= 150:
		lengthScore = 1
	}
	checks = append(checks, domain.CheckResult{
		ID:       "content_length_sufficient",
		Label:    "Enough Content",
		Passed:   sufficient,
		Score:    lengthScore,
		MaxScore: 2,
		Details:  fmt.Sprintf("%d words on page (minimum recommended: 300)", wordCount),
	})
	if !sufficient {
		recs = append(recs, domain.Recommendation{
			ID:    "add_more_content",
			Title: "Add More Content to Your Page",
			Description: fmt.Sprintf("Your page has %d words. AI needs enough content to "+
				"understand your business. Aim for at least 300 words on your homepage.",
				wordCount),
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2 - lengthScore,
			HowToFix: "Expand your homepage content with information about your services, " +
				"your story, and answers to common questions.",
		})
	}

	// Heading structure.
	hasH1 := len(in.Content.H1s) >= 1
	hasSubheadings := len(in.Content.H2s) >= 1
	logical := hasH1 && hasSubheadings
	structureDetails := fmt.Sprintf("%d H1, %d H2, %d H3",
		len(in.Content.H1s), len(in.Content.H2s), len(in.Content.H3s))
	if !logical {
		var parts []string
		if !hasH1 {
			parts = append(parts, "H1 heading")
		}
		if !hasSubheadings {
			parts = append(parts, "subheadings")
		}
		structureDetails = "Missing " + strings.Join(parts, " and ")
	}
	checks = append(checks, domain.CheckResult{
		ID:       "heading_structure",
		Label:    "Clear Heading Structure",
		Passed:   logical,
		Score:    points(logical, 1),
		MaxScore: 1,
		Details:  structureDetails,
	})

	signals := AnswerabilitySignals{
		HasHours:             hasHours,
		HasPricing:           hasPricing,
		HasLocation:          hasLocation,
		ContactMethods:       contactMethods,
		FAQHeadingsCount:     questionHeadings,
		HasFAQSchema:         hasFAQSchema,
		ServiceHeadingsCount: serviceHeadings,
		WordCount:            wordCount,
		H1Count:              len(in.Content.H1s),
		H2Count:              len(in.Content.H2s),
	}

	return newResult(s.Pillar(), signals, checks, recs)
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
