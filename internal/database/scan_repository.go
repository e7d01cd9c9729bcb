package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// ErrScanNotFound is returned when a scan ID does not exist.
var ErrScanNotFound = errors.New("scan not found")

// ScanRepository handles database operations for scan lifecycle rows.
type ScanRepository struct {
	db *sqlx.DB
}

// NewScanRepository creates a new scan repository.
func NewScanRepository(db *sqlx.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Create inserts a new pending scan.
func (r *ScanRepository) Create(ctx context.Context, scan *domain.ScanRecord) error {
	query := `
		INSERT INTO scans (id, url, normalized_url, status, user_id, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		scan.ID,
		scan.URL,
		scan.NormalizedURL,
		scan.Status,
		scan.UserID,
		scan.IPAddress,
	).Scan(&scan.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}

	return nil
}

// Get retrieves a scan by its ID.
func (r *ScanRepository) Get(ctx context.Context, id string) (*domain.ScanRecord, error) {
	var scan domain.ScanRecord
	query := `
		SELECT id, url, normalized_url, status, user_id, ip_address,
		       total_score, grade, error_message, scan_duration_ms,
		       created_at, completed_at
		FROM scans
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &scan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	return &scan, nil
}

// MarkProcessing moves a scan from pending to processing.
func (r *ScanRepository) MarkProcessing(ctx context.Context, id string) error {
	query := `UPDATE scans SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, domain.ScanStatusProcessing, id)
	if markErr := execRequireRows(result, err, ErrScanNotFound); markErr != nil {
		return fmt.Errorf("failed to mark scan processing: %w", markErr)
	}

	return nil
}

// MarkCompleted records a successful scan's score, grade, and timing.
func (r *ScanRepository) MarkCompleted(
	ctx context.Context,
	id string,
	totalScore int,
	grade string,
	durationMs int64,
) error {
	query := `
		UPDATE scans
		SET status = $1, total_score = $2, grade = $3,
		    scan_duration_ms = $4, completed_at = NOW()
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.ScanStatusCompleted, totalScore, grade, durationMs, id)
	if markErr := execRequireRows(result, err, ErrScanNotFound); markErr != nil {
		return fmt.Errorf("failed to mark scan completed: %w", markErr)
	}

	return nil
}

// MarkFailed records a failed scan with its user-facing error message.
func (r *ScanRepository) MarkFailed(
	ctx context.Context,
	id string,
	errorMessage string,
	durationMs int64,
) error {
	query := `
		UPDATE scans
		SET status = $1, error_message = $2, scan_duration_ms = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.ScanStatusFailed, errorMessage, durationMs, id)
	if markErr := execRequireRows(result, err, ErrScanNotFound); markErr != nil {
		return fmt.Errorf("failed to mark scan failed: %w", markErr)
	}

	return nil
}

// CountByUserSince counts scans created by a user after the given instant.
// Used for tier rate limiting.
func (r *ScanRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM scans WHERE user_id = $1 AND created_at >= $2`

	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to count scans by user: %w", err)
	}

	return count, nil
}

// CountByIPSince counts anonymous scans from an IP after the given instant.
func (r *ScanRepository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM scans
		WHERE ip_address = $1 AND user_id IS NULL AND created_at >= $2
	`

	if err := r.db.GetContext(ctx, &count, query, ip, since); err != nil {
		return 0, fmt.Errorf("failed to count scans by ip: %w", err)
	}

	return count, nil
}
