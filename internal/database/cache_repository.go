package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// CacheRepository handles the normalized-URL to scan cache.
type CacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a new cache repository.
func NewCacheRepository(db *sqlx.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get retrieves the cache entry for a normalized URL. Returns nil, nil
// when there is no entry.
func (r *CacheRepository) Get(ctx context.Context, normalizedURL string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	query := `
		SELECT normalized_url, scan_id, cached_at, expires_at
		FROM scan_cache
		WHERE normalized_url = $1
	`

	err := r.db.GetContext(ctx, &entry, query, normalizedURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return &entry, nil
}

// Upsert inserts or replaces the cache entry for a normalized URL.
func (r *CacheRepository) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	query := `
		INSERT INTO scan_cache (normalized_url, scan_id, cached_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (normalized_url)
		DO UPDATE SET scan_id = $2, cached_at = $3, expires_at = $4
	`

	if _, err := r.db.ExecContext(ctx, query,
		entry.NormalizedURL, entry.ScanID, entry.CachedAt, entry.ExpiresAt); err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	return nil
}

// DeleteExpired removes stale entries. Returns the number deleted.
func (r *CacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scan_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cache entries: %w", err)
	}

	return n, nil
}
