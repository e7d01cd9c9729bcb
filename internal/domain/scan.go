package domain

import "time"

// Scan lifecycle states. A scan moves pending -> processing and terminates
// as either completed or failed; terminal states are never left.
const (
	ScanStatusPending    = "pending"
	ScanStatusProcessing = "processing"
	ScanStatusCompleted  = "completed"
	ScanStatusFailed     = "failed"
)

// NAP data source values.
const (
	NAPSourceSchema = "schema"
	NAPSourceHTML   = "html"
	NAPSourceBoth   = "both"
	NAPSourceNone   = "none"
)

// ScanRecord is the persisted scan lifecycle row. It is mutated only by the
// orchestrator, at phase boundaries.
type ScanRecord struct {
	ID            string     `db:"id"              json:"id"`
	URL           string     `db:"url"             json:"url"`
	NormalizedURL string     `db:"normalized_url"  json:"normalized_url"`
	Status        string     `db:"status"          json:"status"`
	UserID        *string    `db:"user_id"         json:"user_id,omitempty"`
	IPAddress     *string    `db:"ip_address"      json:"ip_address,omitempty"`
	TotalScore    *int       `db:"total_score"     json:"total_score,omitempty"`
	Grade         *string    `db:"grade"           json:"grade,omitempty"`
	ErrorMessage  *string    `db:"error_message"   json:"error_message,omitempty"`
	ScanDuration  *int64     `db:"scan_duration_ms" json:"scan_duration_ms,omitempty"`
	CreatedAt     time.Time  `db:"created_at"      json:"created_at"`
	CompletedAt   *time.Time `db:"completed_at"    json:"completed_at,omitempty"`
}

// NAPData is the resolved name/address/phone triplet persisted with a scan
// result, along with which source it came from.
type NAPData struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Source  string  `json:"source"`
}

// ScanResult is the persisted results row, written exactly once after a
// successful run and never updated in place.
type ScanResult struct {
	ScanID string `db:"scan_id" json:"scan_id"`

	EntityVerifiabilityScore  int `db:"entity_verifiability_score"  json:"entity_verifiability_score"`
	ExtractabilitySchemaScore int `db:"extractability_schema_score" json:"extractability_schema_score"`
	FreshnessMaintenanceScore int `db:"freshness_maintenance_score" json:"freshness_maintenance_score"`
	TrustRiskScore            int `db:"trust_risk_score"            json:"trust_risk_score"`
	AnswerabilityScore        int `db:"answerability_coverage_score" json:"answerability_coverage_score"`

	EntitySignals        JSONBValue `db:"entity_signals"        json:"entity_signals"`
	SchemaSignals        JSONBValue `db:"schema_signals"        json:"schema_signals"`
	FreshnessSignals     JSONBValue `db:"freshness_signals"     json:"freshness_signals"`
	TrustSignals         JSONBValue `db:"trust_signals"         json:"trust_signals"`
	AnswerabilitySignals JSONBValue `db:"answerability_signals" json:"answerability_signals"`

	DetectedSchemas JSONBValue `db:"detected_schemas" json:"detected_schemas"`
	NAPData         JSONBValue `db:"nap_data"         json:"nap_data"`
	MetaTitle       *string    `db:"meta_title"       json:"meta_title,omitempty"`
	MetaDescription *string    `db:"meta_description" json:"meta_description,omitempty"`
	Recommendations JSONBValue `db:"recommendations"  json:"recommendations"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CacheEntry maps a normalized URL to a recent scan so repeat requests can
// short-circuit without re-scanning.
type CacheEntry struct {
	NormalizedURL string    `db:"normalized_url" json:"normalized_url"`
	ScanID        string    `db:"scan_id"        json:"scan_id"`
	CachedAt      time.Time `db:"cached_at"      json:"cached_at"`
	ExpiresAt     time.Time `db:"expires_at"     json:"expires_at"`
}

// Fresh reports whether the cache entry is still within its TTL at the
// given instant.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return e.ExpiresAt.After(now)
}
