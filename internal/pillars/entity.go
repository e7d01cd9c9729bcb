package pillars

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/parse"
)

// maxSameAsProbes caps how many sameAs links get a liveness probe.
const maxSameAsProbes = 4

// EntitySignals is the raw evidence behind the entity verifiability score.
type EntitySignals struct {
	SchemaTypes      []string             `json:"schema_types"`
	HTMLNameCount    int                  `json:"html_name_count"`
	HTMLAddressCount int                  `json:"html_address_count"`
	HTMLPhoneCount   int                  `json:"html_phone_count"`
	SchemaNames      []string             `json:"schema_names"`
	HasSchemaAddress bool                 `json:"has_schema_address"`
	HasSchemaPhone   bool                 `json:"has_schema_phone"`
	NAPConsistency   parse.NAPConsistency `json:"nap_consistency"`
	AddressValidated bool                 `json:"address_validated"`
	SameAsCount      int                  `json:"same_as_count"`
	SameAsResolve    bool                 `json:"same_as_resolve"`
}

// EntityScorer measures whether AI systems can verify who the business is:
// schema identity fields, NAP consistency, a geocodable address, and live
// social profile links.
type EntityScorer struct {
	geocoder Geocoder
	links    LinkChecker
}

// NewEntityScorer creates the entity verifiability scorer.
func NewEntityScorer(geocoder Geocoder, links LinkChecker) *EntityScorer {
	return &EntityScorer{geocoder: geocoder, links: links}
}

// Pillar identifies the dimension this scorer covers.
func (s *EntityScorer) Pillar() domain.Pillar { return domain.PillarEntityVerifiability }

// Score runs the entity verifiability checks.
func (s *EntityScorer) Score(ctx context.Context, in Inputs) domain.ModuleResult {
	var checks []domain.CheckResult
	var recs []domain.Recommendation

	entity := in.Schema.Entity()
	htmlNAP := parse.ExtractNAPFromHTML(in.Crawl.HTML)
	schemaNAP := parse.ExtractNAPFromSchema(entity)

	// Business schema present.
	hasEntitySchema := entity != nil
	entityDetails := "No Organization or LocalBusiness schema markup found"
	if hasEntitySchema {
		kind := "Organization"
		if in.Schema.LocalBusiness != nil {
			kind = "LocalBusiness"
		}
		entityDetails = fmt.Sprintf("Found %s schema", kind)
	}
	checks = append(checks, domain.CheckResult{
		ID:       "has_entity_schema",
		Label:    "Business Schema Markup Found",
		Passed:   hasEntitySchema,
		Score:    points(hasEntitySchema, 5),
		MaxScore: 5,
		Details:  entityDetails,
	})
	if !hasEntitySchema {
		recs = append(recs, domain.Recommendation{
			ID:    "add_entity_schema",
			Title: "Add Business Schema Markup",
			Description: "AI systems use schema markup to understand who you are. Adding " +
				"Organization or LocalBusiness schema helps AI confidently identify and " +
				"recommend your business.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 5,
			HowToFix: "Add a JSON-LD script tag to your homepage with your business name, " +
				"address, phone number, and type. You can use Google's Structured Data " +
				"Markup Helper to generate the code.",
		})
	}

	// Name in schema.
	hasSchemaName := len(schemaNAP.Names) > 0
	nameDetails := "No business name found in schema markup"
	if hasSchemaName {
		nameDetails = fmt.Sprintf("Found business name: %q", schemaNAP.Names[0])
	}
	checks = append(checks, domain.CheckResult{
		ID:       "schema_has_name",
		Label:    "Business Name in Schema",
		Passed:   hasSchemaName,
		Score:    points(hasSchemaName, 3),
		MaxScore: 3,
		Details:  nameDetails,
	})
	if !hasSchemaName && hasEntitySchema {
		recs = append(recs, domain.Recommendation{
			ID:    "add_schema_name",
			Title: "Add Business Name to Schema",
			Description: "Your schema markup exists but is missing your business name. " +
				"AI needs this to identify you.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add a \"name\" property to your Organization or LocalBusiness " +
				"schema with your official business name.",
		})
	}

	// Address in schema.
	hasSchemaAddress := len(schemaNAP.Addresses) > 0
	checks = append(checks, domain.CheckResult{
		ID:       "schema_has_address",
		Label:    "Address in Schema",
		Passed:   hasSchemaAddress,
		Score:    points(hasSchemaAddress, 3),
		MaxScore: 3,
		Details:  pickDetails(hasSchemaAddress, "Found address in schema", "No address found in schema markup"),
	})
	if !hasSchemaAddress {
		recs = append(recs, domain.Recommendation{
			ID:    "add_schema_address",
			Title: "Add Your Address to Schema",
			Description: "AI systems use your address to recommend you for local searches. " +
				"Without it, you may be invisible for \"near me\" queries.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Add an \"address\" property with streetAddress, addressLocality, " +
				"addressRegion, and postalCode to your schema.",
		})
	}

	// Phone in schema.
	hasSchemaPhone := len(schemaNAP.Phones) > 0
	checks = append(checks, domain.CheckResult{
		ID:       "schema_has_phone",
		Label:    "Phone Number in Schema",
		Passed:   hasSchemaPhone,
		Score:    points(hasSchemaPhone, 2),
		MaxScore: 2,
		Details:  pickDetails(hasSchemaPhone, "Found phone number in schema", "No phone number found in schema markup"),
	})
	if !hasSchemaPhone {
		recs = append(recs, domain.Recommendation{
			ID:    "add_schema_phone",
			Title: "Add Phone Number to Schema",
			Description: "A phone number in your schema markup helps AI verify your " +
				"business is real and contactable.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 2,
			HowToFix: "Add a \"telephone\" property to your schema markup with your main " +
				"business phone number.",
		})
	}

	// NAP consistency between schema and visible page.
	consistency := parse.CheckNAPConsistency(htmlNAP, schemaNAP)
	consistencyScore := 0
	if consistency.NameMatch {
		consistencyScore++
	}
	if consistency.PhoneMatch {
		consistencyScore++
	}
	if consistency.AddressMatch {
		consistencyScore += 2
	}
	napPassed := consistencyScore >= 3
	checks = append(checks, domain.CheckResult{
		ID:       "nap_consistency",
		Label:    "NAP Consistency",
		Passed:   napPassed,
		Score:    consistencyScore,
		MaxScore: 4,
		Details: fmt.Sprintf("Name %s, Phone %s, Address %s",
			matchWord(consistency.NameMatch), matchWord(consistency.PhoneMatch), matchWord(consistency.AddressMatch)),
	})
	if !napPassed {
		recs = append(recs, domain.Recommendation{
			ID:    "fix_nap_consistency",
			Title: "Fix Name/Address/Phone Inconsistencies",
			Description: "Your business details in the schema markup don't match what's " +
				"shown on your page. AI systems see this as untrustworthy.",
			Impact:            domain.ImpactHigh,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 4 - consistencyScore,
			HowToFix: "Make sure your business name, address, and phone number are exactly " +
				"the same in your schema markup and on your visible web page.",
		})
	}

	// Address resolves on a map. Schema address wins; page address is the
	// fallback.
	addressToCheck := ""
	if len(schemaNAP.Addresses) > 0 {
		addressToCheck = schemaNAP.Addresses[0]
	} else if len(htmlNAP.Addresses) > 0 {
		addressToCheck = htmlNAP.Addresses[0]
	}
	addressValidates := false
	if addressToCheck != "" {
		addressValidates = s.geocoder.Lookup(ctx, addressToCheck).Found
	}
	geoDetails := "No address found to verify"
	if addressValidates {
		geoDetails = "Address successfully found on map"
	} else if addressToCheck != "" {
		geoDetails = "Address could not be verified on map"
	}
	checks = append(checks, domain.CheckResult{
		ID:       "address_validates",
		Label:    "Address Validates on Map",
		Passed:   addressValidates,
		Score:    points(addressValidates, 3),
		MaxScore: 3,
		Details:  geoDetails,
	})
	if !addressValidates && addressToCheck != "" {
		recs = append(recs, domain.Recommendation{
			ID:    "fix_address",
			Title: "Verify Your Address Format",
			Description: "Your address couldn't be found on a map. This may mean it's " +
				"formatted incorrectly or incomplete.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3,
			HowToFix: "Use a standard address format: \"123 Main Street, City, ST 12345\". " +
				"Make sure it matches your actual Google Maps listing.",
		})
	}

	// sameAs links declared.
	sameAsLinks := entity.SameAs()
	hasSameAs := len(sameAsLinks) >= 2
	sameAsScore := 0
	switch {
	case hasSameAs:
		sameAsScore = 3
	case len(sameAsLinks) == 1:
		sameAsScore = 1
	}
	checks = append(checks, domain.CheckResult{
		ID:       "has_sameas_links",
		Label:    "Social Profile Links in Schema",
		Passed:   hasSameAs,
		Score:    sameAsScore,
		MaxScore: 3,
		Details:  fmt.Sprintf("Found %d social profile link(s) in schema", len(sameAsLinks)),
	})
	if !hasSameAs {
		recs = append(recs, domain.Recommendation{
			ID:    "add_sameas_links",
			Title: "Link Your Social Profiles in Schema",
			Description: "Adding links to your social media profiles (Facebook, Instagram, " +
				"Yelp, etc.) in your schema helps AI verify you're a real, active business.",
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3 - sameAsScore,
			HowToFix: "Add a \"sameAs\" property to your schema with an array of URLs to " +
				"your social media profiles and business directory listings.",
		})
	}

	// sameAs links actually resolve.
	sameAsResolve := s.sameAsLinksResolve(ctx, sameAsLinks)
	checks = append(checks, domain.CheckResult{
		ID:       "sameas_links_resolve",
		Label:    "Social Links Are Active",
		Passed:   sameAsResolve,
		Score:    points(sameAsResolve, 2),
		MaxScore: 2,
		Details: pickDetails(sameAsResolve,
			"Social profile links are active and reachable",
			"Social profile links could not be verified"),
	})

	signals := EntitySignals{
		SchemaTypes:      in.Schema.Types,
		HTMLNameCount:    len(htmlNAP.Names),
		HTMLAddressCount: len(htmlNAP.Addresses),
		HTMLPhoneCount:   len(htmlNAP.Phones),
		SchemaNames:      schemaNAP.Names,
		HasSchemaAddress: hasSchemaAddress,
		HasSchemaPhone:   hasSchemaPhone,
		NAPConsistency:   consistency,
		AddressValidated: addressValidates,
		SameAsCount:      len(sameAsLinks),
		SameAsResolve:    sameAsResolve,
	}

	return newResult(s.Pillar(), signals, checks, recs)
}

// sameAsLinksResolve probes up to maxSameAsProbes links concurrently and
// reports whether at least two are alive.
func (s *EntityScorer) sameAsLinksResolve(ctx context.Context, links []string) bool {
	if len(links) == 0 {
		return false
	}
	if len(links) > maxSameAsProbes {
		links = links[:maxSameAsProbes]
	}

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

	resolved := 0
	for _, ok := range alive {
		if ok {
			resolved++
		}
	}
	return resolved >= 2
}

func points(passed bool, max int) int {
	if passed {
		return max
	}
	return 0
}

func pickDetails(passed bool, pass, fail string) string {
	if passed {
		return pass
	}
	return fail
}

func matchWord(matched bool) string {
	if matched {
		return "matches"
	}
	return "mismatch"
}
