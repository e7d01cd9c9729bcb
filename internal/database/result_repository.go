package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// ErrResultNotFound is returned when a scan has no results row.
var ErrResultNotFound = errors.New("scan result not found")

// ResultRepository handles database operations for scan results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save inserts the results row for a completed scan.
func (r *ResultRepository) Save(ctx context.Context, result *domain.ScanResult) error {
	query := `
		INSERT INTO scan_results (
			scan_id,
			entity_verifiability_score, extractability_schema_score,
			freshness_maintenance_score, trust_risk_score, answerability_coverage_score,
			entity_signals, schema_signals, freshness_signals,
			trust_signals, answerability_signals,
			detected_schemas, nap_data, meta_title, meta_description, recommendations
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		result.ScanID,
		result.EntityVerifiabilityScore,
		result.ExtractabilitySchemaScore,
		result.FreshnessMaintenanceScore,
		result.TrustRiskScore,
		result.AnswerabilityScore,
		result.EntitySignals,
		result.SchemaSignals,
		result.FreshnessSignals,
		result.TrustSignals,
		result.AnswerabilitySignals,
		result.DetectedSchemas,
		result.NAPData,
		result.MetaTitle,
		result.MetaDescription,
		result.Recommendations,
	).Scan(&result.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}

	return nil
}

// GetByScanID retrieves the results row for a scan.
func (r *ResultRepository) GetByScanID(ctx context.Context, scanID string) (*domain.ScanResult, error) {
	var result domain.ScanResult
	query := `
		SELECT scan_id,
		       entity_verifiability_score, extractability_schema_score,
		       freshness_maintenance_score, trust_risk_score, answerability_coverage_score,
		       entity_signals, schema_signals, freshness_signals,
		       trust_signals, answerability_signals,
		       detected_schemas, nap_data, meta_title, meta_description, recommendations,
		       created_at
		FROM scan_results
		WHERE scan_id = $1
	`

	err := r.db.GetContext(ctx, &result, query, scanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, scanID)
		}
		return nil, fmt.Errorf("failed to get scan result: %w", err)
	}

	return &result, nil
}
