// Package domain defines the core types shared across the scan engine:
// crawl snapshots, check results, pillar scores, recommendations, and the
// persisted scan lifecycle records.
package domain

// Pillar identifies one of the five scored dimensions of AI visibility.
type Pillar string

// The five scoring pillars.
const (
	PillarEntityVerifiability   Pillar = "entity_verifiability"
	PillarExtractabilitySchema  Pillar = "extractability_schema"
	PillarFreshnessMaintenance  Pillar = "freshness_maintenance"
	PillarTrustRisk             Pillar = "trust_risk"
	PillarAnswerabilityCoverage Pillar = "answerability_coverage"
)

// Pillars lists all pillars in canonical order.
var Pillars = []Pillar{
	PillarEntityVerifiability,
	PillarExtractabilitySchema,
	PillarFreshnessMaintenance,
	PillarTrustRisk,
	PillarAnswerabilityCoverage,
}

// PillarMaxPoints holds the fixed point budget per pillar. The budgets sum
// to 100.
var PillarMaxPoints = map[Pillar]int{
	PillarEntityVerifiability:   25,
	PillarExtractabilitySchema:  20,
	PillarFreshnessMaintenance:  20,
	PillarTrustRisk:             15,
	PillarAnswerabilityCoverage: 20,
}

// PillarLabels holds the human-readable name per pillar.
var PillarLabels = map[Pillar]string{
	PillarEntityVerifiability:   "Entity Verifiability",
	PillarExtractabilitySchema:  "Extractability & Schema",
	PillarFreshnessMaintenance:  "Freshness & Maintenance",
	PillarTrustRisk:             "Trust & Risk Signals",
	PillarAnswerabilityCoverage: "Answerability Coverage",
}

// PillarDescriptions explains what each pillar measures, in end-user terms.
var PillarDescriptions = map[Pillar]string{
	PillarEntityVerifiability: "Can AI systems verify who you are? This checks whether your " +
		"business name, address, and phone number are consistent and machine-readable.",
	PillarExtractabilitySchema: "Can AI systems easily read your website? This checks for " +
		"structured data markup that helps machines understand your content.",
	PillarFreshnessMaintenance: "Does your website look active and maintained? AI systems " +
		"prefer sources that are regularly updated.",
	PillarTrustRisk: "Is your website secure and fast? This checks for security best " +
		"practices and real-world performance.",
	PillarAnswerabilityCoverage: "Does your website answer the questions people actually ask? " +
		"This checks whether your content covers common queries about your business.",
}
