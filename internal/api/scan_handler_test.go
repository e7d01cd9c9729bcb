package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/api"
	"github.com/coreyshath-a11y/aeo-app/internal/database"
	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

type mockScanStore struct {
	createFunc func(ctx context.Context, scan *domain.ScanRecord) error
	getFunc    func(ctx context.Context, id string) (*domain.ScanRecord, error)
}

func (m *mockScanStore) Create(ctx context.Context, scan *domain.ScanRecord) error {
	return m.createFunc(ctx, scan)
}

func (m *mockScanStore) Get(ctx context.Context, id string) (*domain.ScanRecord, error) {
	return m.getFunc(ctx, id)
}

type mockResultStore struct {
	getFunc func(ctx context.Context, scanID string) (*domain.ScanResult, error)
}

func (m *mockResultStore) GetByScanID(ctx context.Context, scanID string) (*domain.ScanResult, error) {
	return m.getFunc(ctx, scanID)
}

type mockCacheStore struct {
	getFunc func(ctx context.Context, normalizedURL string) (*domain.CacheEntry, error)
}

func (m *mockCacheStore) Get(ctx context.Context, normalizedURL string) (*domain.CacheEntry, error) {
	return m.getFunc(ctx, normalizedURL)
}

type mockRunner struct {
	runs chan string
}

func (m *mockRunner) Run(_ context.Context, scanID, _ string) error {
	if m.runs != nil {
		m.runs <- scanID
	}
	return nil
}

// handlerDeps bundles the mocks behind a handler with permissive defaults:
// nothing cached, counters at zero, creates succeed.
type handlerDeps struct {
	scans   *mockScanStore
	results *mockResultStore
	cache   *mockCacheStore
	counter *mockCounter
	runner  *mockRunner
}

func defaultDeps() handlerDeps {
	return handlerDeps{
		scans: &mockScanStore{
			createFunc: func(context.Context, *domain.ScanRecord) error { return nil },
			getFunc: func(context.Context, string) (*domain.ScanRecord, error) {
				return nil, database.ErrScanNotFound
			},
		},
		results: &mockResultStore{
			getFunc: func(context.Context, string) (*domain.ScanResult, error) {
				return nil, database.ErrResultNotFound
			},
		},
		cache: &mockCacheStore{
			getFunc: func(context.Context, string) (*domain.CacheEntry, error) {
				return nil, nil
			},
		},
		counter: &mockCounter{
			countByUserFunc: func(context.Context, string, time.Time) (int, error) { return 0, nil },
			countByIPFunc:   func(context.Context, string, time.Time) (int, error) { return 0, nil },
		},
		runner: &mockRunner{runs: make(chan string, 1)},
	}
}

func newTestRouter(deps handlerDeps) http.Handler {
	handler := api.NewScanHandler(
		deps.scans,
		deps.results,
		deps.cache,
		api.NewRateLimiter(deps.counter),
		deps.runner,
		logger.NewNoOp(),
	)
	return api.NewRouter(handler, logger.NewNoOp())
}

func postScan(t *testing.T, router http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func getScan(t *testing.T, router http.Handler, id string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/scan/"+id, http.NoBody)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestScanHandler_Create_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"url":`},
		{"missing url", `{}`},
		{"not a url", `{"url":"not a website"}`},
		{"unsupported scheme", `{"url":"ftp://acme.example"}`},
	}

	router := newTestRouter(defaultDeps())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postScan(t, router, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "Please enter a valid website URL", decodeBody(t, recorder)["error"])
		})
	}
}

func TestScanHandler_Create_Accepted(t *testing.T) {
	t.Parallel()

	var created *domain.ScanRecord
	deps := defaultDeps()
	deps.scans.createFunc = func(_ context.Context, scan *domain.ScanRecord) error {
		created = scan
		return nil
	}

	router := newTestRouter(deps)
	recorder := postScan(t, router, `{"url":"https://www.Acme.example/?utm=x"}`, nil)

	assert.Equal(t, http.StatusAccepted, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["cached"])
	assert.Contains(t, body["scan_id"], "sc_")

	require.NotNil(t, created)
	assert.Equal(t, "https://acme.example", created.NormalizedURL)
	assert.Equal(t, domain.ScanStatusPending, created.Status)
	assert.Nil(t, created.UserID)
	require.NotNil(t, created.IPAddress)

	// The scan runs in the background after the response is sent.
	select {
	case scanID := <-deps.runner.runs:
		assert.Equal(t, created.ID, scanID)
	case <-time.After(2 * time.Second):
		t.Fatal("background scan never started")
	}
}

func TestScanHandler_Create_AttributesSignedInUser(t *testing.T) {
	t.Parallel()

	var created *domain.ScanRecord
	deps := defaultDeps()
	deps.scans.createFunc = func(_ context.Context, scan *domain.ScanRecord) error {
		created = scan
		return nil
	}

	router := newTestRouter(deps)
	recorder := postScan(t, router, `{"url":"https://acme.example"}`, map[string]string{
		"X-User-ID":   "usr_42",
		"X-User-Tier": "pro",
	})

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	require.NotNil(t, created)
	require.NotNil(t, created.UserID)
	assert.Equal(t, "usr_42", *created.UserID)
}

func TestScanHandler_Create_RateLimited(t *testing.T) {
	t.Parallel()

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		deps := defaultDeps()
		deps.counter.countByIPFunc = func(context.Context, string, time.Time) (int, error) {
			return 3, nil
		}

		recorder := postScan(t, newTestRouter(deps), `{"url":"https://acme.example"}`, nil)

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Contains(t, body["error"], "Create a free account")
		assert.NotZero(t, body["reset_at"])
	})

	t.Run("signed in", func(t *testing.T) {
		t.Parallel()

		deps := defaultDeps()
		deps.counter.countByUserFunc = func(context.Context, string, time.Time) (int, error) {
			return 5, nil
		}

		recorder := postScan(t, newTestRouter(deps), `{"url":"https://acme.example"}`, map[string]string{
			"X-User-ID":   "usr_42",
			"X-User-Tier": "free",
		})

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
		assert.Contains(t, decodeBody(t, recorder)["error"], "daily scan limit")
	})
}

func TestScanHandler_Create_ServesFreshCache(t *testing.T) {
	t.Parallel()

	deps := defaultDeps()
	deps.cache.getFunc = func(_ context.Context, normalizedURL string) (*domain.CacheEntry, error) {
		assert.Equal(t, "https://acme.example", normalizedURL)
		return &domain.CacheEntry{
			NormalizedURL: normalizedURL,
			ScanID:        "sc_cached",
			CachedAt:      time.Now().Add(-time.Minute),
			ExpiresAt:     time.Now().Add(time.Hour),
		}, nil
	}
	deps.scans.createFunc = func(context.Context, *domain.ScanRecord) error {
		t.Fatal("a fresh cache hit must not create a scan")
		return nil
	}

	recorder := postScan(t, newTestRouter(deps), `{"url":"http://www.acme.example/"}`, nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "sc_cached", body["scan_id"])
	assert.Equal(t, true, body["cached"])
}

func TestScanHandler_Create_ExpiredCacheIsIgnored(t *testing.T) {
	t.Parallel()

	deps := defaultDeps()
	deps.cache.getFunc = func(_ context.Context, normalizedURL string) (*domain.CacheEntry, error) {
		return &domain.CacheEntry{
			NormalizedURL: normalizedURL,
			ScanID:        "sc_stale",
			CachedAt:      time.Now().Add(-48 * time.Hour),
			ExpiresAt:     time.Now().Add(-24 * time.Hour),
		}, nil
	}

	recorder := postScan(t, newTestRouter(deps), `{"url":"https://acme.example"}`, nil)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
}

func TestScanHandler_Get_InvalidID(t *testing.T) {
	t.Parallel()

	recorder := getScan(t, newTestRouter(defaultDeps()), "not-a-scan-id")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Invalid scan ID", decodeBody(t, recorder)["error"])
}

func TestScanHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	recorder := getScan(t, newTestRouter(defaultDeps()), "sc_missing")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Scan not found", decodeBody(t, recorder)["error"])
}

func TestScanHandler_Get_InFlight(t *testing.T) {
	t.Parallel()

	deps := defaultDeps()
	deps.scans.getFunc = func(_ context.Context, id string) (*domain.ScanRecord, error) {
		return &domain.ScanRecord{
			ID:     id,
			URL:    "https://acme.example",
			Status: domain.ScanStatusProcessing,
		}, nil
	}

	recorder := getScan(t, newTestRouter(deps), "sc_busy")

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "processing", body["status"])
	assert.NotContains(t, body, "total_score")
	assert.NotContains(t, body, "results")
}

func TestScanHandler_Get_Failed(t *testing.T) {
	t.Parallel()

	message := "The website took too long to respond."
	deps := defaultDeps()
	deps.scans.getFunc = func(_ context.Context, id string) (*domain.ScanRecord, error) {
		return &domain.ScanRecord{
			ID:           id,
			URL:          "https://slow.example",
			Status:       domain.ScanStatusFailed,
			ErrorMessage: &message,
		}, nil
	}

	recorder := getScan(t, newTestRouter(deps), "sc_dead")

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, message, body["error"])
}

func TestScanHandler_Get_Completed(t *testing.T) {
	t.Parallel()

	score := 72
	grade := "B+"
	deps := defaultDeps()
	deps.scans.getFunc = func(_ context.Context, id string) (*domain.ScanRecord, error) {
		return &domain.ScanRecord{
			ID:         id,
			URL:        "https://acme.example",
			Status:     domain.ScanStatusCompleted,
			TotalScore: &score,
			Grade:      &grade,
		}, nil
	}
	deps.results.getFunc = func(_ context.Context, scanID string) (*domain.ScanResult, error) {
		return &domain.ScanResult{
			ScanID:                    scanID,
			EntityVerifiabilityScore:  20,
			ExtractabilitySchemaScore: 15,
		}, nil
	}

	recorder := getScan(t, newTestRouter(deps), "sc_done")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Cache-Control"), "s-maxage=3600")

	body := decodeBody(t, recorder)
	assert.Equal(t, "completed", body["status"])
	assert.EqualValues(t, 72, body["total_score"])
	assert.Equal(t, "B+", body["grade"])

	results, ok := body["results"].(map[string]any)
	require.True(t, ok)
	entity, ok := results["entity_verifiability"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 20, entity["score"])
}

func TestScanHandler_Get_CompletedWithoutResultsRow(t *testing.T) {
	t.Parallel()

	score := 64
	grade := "B"
	deps := defaultDeps()
	deps.scans.getFunc = func(_ context.Context, id string) (*domain.ScanRecord, error) {
		return &domain.ScanRecord{
			ID:         id,
			URL:        "https://acme.example",
			Status:     domain.ScanStatusCompleted,
			TotalScore: &score,
			Grade:      &grade,
		}, nil
	}

	recorder := getScan(t, newTestRouter(deps), "sc_thin")

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Nil(t, body["results"])
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	recorder := httptest.NewRecorder()
	newTestRouter(defaultDeps()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", decodeBody(t, recorder)["status"])
}
