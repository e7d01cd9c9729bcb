package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/database"
	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestScanRepository_Create(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	created := time.Now()
	mock.ExpectQuery("INSERT INTO scans").
		WithArgs("sc_1", "https://acme.example", "https://acme.example",
			domain.ScanStatusPending, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	scan := &domain.ScanRecord{
		ID:            "sc_1",
		URL:           "https://acme.example",
		NormalizedURL: "https://acme.example",
		Status:        domain.ScanStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), scan))

	assert.Equal(t, created, scan.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRepository_Get(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	columns := []string{
		"id", "url", "normalized_url", "status", "user_id", "ip_address",
		"total_score", "grade", "error_message", "scan_duration_ms",
		"created_at", "completed_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM scans").
		WithArgs("sc_1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"sc_1", "https://acme.example", "https://acme.example",
			domain.ScanStatusCompleted, nil, nil,
			72, "B+", nil, int64(4200),
			time.Now(), time.Now(),
		))

	scan, err := repo.Get(context.Background(), "sc_1")
	require.NoError(t, err)

	assert.Equal(t, "sc_1", scan.ID)
	assert.Equal(t, domain.ScanStatusCompleted, scan.Status)
	require.NotNil(t, scan.TotalScore)
	assert.Equal(t, 72, *scan.TotalScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRepository_Get_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM scans").
		WithArgs("sc_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "sc_missing")
	assert.ErrorIs(t, err, database.ErrScanNotFound)
}

func TestScanRepository_MarkProcessing(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectExec("UPDATE scans SET status").
		WithArgs(domain.ScanStatusProcessing, "sc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkProcessing(context.Background(), "sc_1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRepository_MarkProcessing_MissingRow(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectExec("UPDATE scans SET status").
		WithArgs(domain.ScanStatusProcessing, "sc_gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessing(context.Background(), "sc_gone")
	assert.ErrorIs(t, err, database.ErrScanNotFound)
}

func TestScanRepository_MarkCompleted(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectExec("UPDATE scans").
		WithArgs(domain.ScanStatusCompleted, 72, "B+", int64(4200), "sc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkCompleted(context.Background(), "sc_1", 72, "B+", 4200))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRepository_MarkFailed(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectExec("UPDATE scans").
		WithArgs(domain.ScanStatusFailed, "The scan took too long. Please try again.",
			int64(55000), "sc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(context.Background(), "sc_1",
		"The scan took too long. Please try again.", 55000)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRepository_CountByUserSince(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	since := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM scans WHERE user_id`).
		WithArgs("usr_1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByUserSince(context.Background(), "usr_1", since)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestScanRepository_CountByIPSince(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	since := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM scans`).
		WithArgs("203.0.113.7", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountByIPSince(context.Background(), "203.0.113.7", since)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestScanRepository_CountError(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewScanRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM scans`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.CountByIPSince(context.Background(), "203.0.113.7", time.Now())
	assert.Error(t, err)
}
