package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coreyshath-a11y/aeo-app/internal/database"
	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
	"github.com/coreyshath-a11y/aeo-app/internal/urlutil"
)

// scanIDPrefix marks public scan identifiers.
const scanIDPrefix = "sc_"

// Upstream auth proxy headers carrying the caller's identity.
const (
	headerUserID   = "X-User-ID"
	headerUserTier = "X-User-Tier"
)

// ScanStore is the scan persistence the handler needs.
type ScanStore interface {
	Create(ctx context.Context, scan *domain.ScanRecord) error
	Get(ctx context.Context, id string) (*domain.ScanRecord, error)
}

// ResultStore fetches the results row of a completed scan.
type ResultStore interface {
	GetByScanID(ctx context.Context, scanID string) (*domain.ScanResult, error)
}

// CacheStore looks up recent scans by normalized URL.
type CacheStore interface {
	Get(ctx context.Context, normalizedURL string) (*domain.CacheEntry, error)
}

// ScanRunner executes a scan asynchronously.
type ScanRunner interface {
	Run(ctx context.Context, scanID, rawURL string) error
}

// ScanHandler handles scan-related HTTP requests.
type ScanHandler struct {
	scans   ScanStore
	results ResultStore
	cache   CacheStore
	limiter *RateLimiter
	runner  ScanRunner
	log     logger.Interface
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(
	scans ScanStore,
	results ResultStore,
	cache CacheStore,
	limiter *RateLimiter,
	runner ScanRunner,
	log logger.Interface,
) *ScanHandler {
	return &ScanHandler{
		scans:   scans,
		results: results,
		cache:   cache,
		limiter: limiter,
		runner:  runner,
		log:     log,
	}
}

// createScanRequest is the JSON body for POST /api/scan.
type createScanRequest struct {
	URL string `binding:"required" json:"url"`
}

// Create handles POST /api/scan. A fresh cached scan of the same
// normalized URL short-circuits; otherwise a pending scan is created and
// run in the background.
func (h *ScanHandler) Create(c *gin.Context) {
	var req createScanRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBadRequest(c, "Please enter a valid website URL")
		return
	}

	targetURL, validateErr := urlutil.Validate(req.URL)
	if validateErr != nil {
		respondBadRequest(c, "Please enter a valid website URL")
		return
	}
	normalizedURL := urlutil.Normalize(targetURL)

	ip := c.ClientIP()
	userID := c.GetHeader(headerUserID)
	tier := callerTier(c, userID)

	rateCheck, rateErr := h.limiter.Check(c.Request.Context(), ip, userID, tier)
	if rateErr != nil {
		h.log.Error("rate limit check failed", "error", rateErr)
		respondInternalError(c, "Failed to start scan. Please try again.")
		return
	}
	if !rateCheck.Allowed {
		message := "You've reached your daily scan limit. Upgrade your plan for more scans."
		if tier == tierAnonymous {
			message = "You've reached the free scan limit. Create a free account to get " +
				"more scans. It only takes 30 seconds."
		}
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    message,
			"reset_at": rateCheck.ResetAt.Unix(),
		})
		return
	}

	// A fresh scan of the same page serves everyone who asks again.
	if cached, cacheErr := h.cache.Get(c.Request.Context(), normalizedURL); cacheErr == nil &&
		cached != nil && cached.Fresh(time.Now()) {
		c.JSON(http.StatusOK, gin.H{
			"scan_id": cached.ScanID,
			"cached":  true,
		})
		return
	}

	scan := &domain.ScanRecord{
		ID:            scanIDPrefix + uuid.NewString(),
		URL:           targetURL,
		NormalizedURL: normalizedURL,
		Status:        domain.ScanStatusPending,
	}
	if userID != "" {
		scan.UserID = &userID
	}
	if ip != "" {
		scan.IPAddress = &ip
	}

	if createErr := h.scans.Create(c.Request.Context(), scan); createErr != nil {
		h.log.Error("failed to create scan", "error", createErr)
		respondInternalError(c, "Failed to start scan. Please try again.")
		return
	}

	// The scan outlives this request; it runs against a fresh context.
	go func() {
		if runErr := h.runner.Run(context.Background(), scan.ID, targetURL); runErr != nil {
			h.log.Warn("background scan failed", "scan_id", scan.ID, "error", runErr)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"scan_id": scan.ID,
		"cached":  false,
	})
}

// Get handles GET /api/scan/:id. In-flight scans return status only;
// completed scans include the full results payload.
func (h *ScanHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !strings.HasPrefix(id, scanIDPrefix) {
		respondBadRequest(c, "Invalid scan ID")
		return
	}

	scan, err := h.scans.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrScanNotFound) {
			respondNotFound(c, "Scan")
			return
		}
		h.log.Error("failed to get scan", "scan_id", id, "error", err)
		respondInternalError(c, "Failed to retrieve scan")
		return
	}

	switch scan.Status {
	case domain.ScanStatusPending, domain.ScanStatusProcessing:
		c.JSON(http.StatusOK, gin.H{
			"scan_id": scan.ID,
			"status":  scan.Status,
			"url":     scan.URL,
		})
		return

	case domain.ScanStatusFailed:
		message := "Scan failed"
		if scan.ErrorMessage != nil {
			message = *scan.ErrorMessage
		}
		c.JSON(http.StatusOK, gin.H{
			"scan_id": scan.ID,
			"status":  scan.Status,
			"url":     scan.URL,
			"error":   message,
		})
		return
	}

	results, resultsErr := h.results.GetByScanID(c.Request.Context(), id)
	if resultsErr != nil && !errors.Is(resultsErr, database.ErrResultNotFound) {
		h.log.Error("failed to get scan results", "scan_id", id, "error", resultsErr)
		respondInternalError(c, "Failed to retrieve scan results")
		return
	}

	c.Header("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=600")
	c.JSON(http.StatusOK, completedScanResponse(scan, results))
}

// completedScanResponse shapes the full payload of a finished scan.
func completedScanResponse(scan *domain.ScanRecord, results *domain.ScanResult) gin.H {
	response := gin.H{
		"scan_id":      scan.ID,
		"status":       scan.Status,
		"url":          scan.URL,
		"total_score":  scan.TotalScore,
		"grade":        scan.Grade,
		"duration_ms":  scan.ScanDuration,
		"created_at":   scan.CreatedAt,
		"completed_at": scan.CompletedAt,
		"results":      nil,
	}

	if results != nil {
		response["results"] = gin.H{
			"entity_verifiability": gin.H{
				"score":   results.EntityVerifiabilityScore,
				"signals": results.EntitySignals,
			},
			"extractability_schema": gin.H{
				"score":   results.ExtractabilitySchemaScore,
				"signals": results.SchemaSignals,
			},
			"freshness_maintenance": gin.H{
				"score":   results.FreshnessMaintenanceScore,
				"signals": results.FreshnessSignals,
			},
			"trust_risk": gin.H{
				"score":   results.TrustRiskScore,
				"signals": results.TrustSignals,
			},
			"answerability_coverage": gin.H{
				"score":   results.AnswerabilityScore,
				"signals": results.AnswerabilitySignals,
			},
			"recommendations": results.Recommendations,
			"metadata": gin.H{
				"meta_title":       results.MetaTitle,
				"meta_description": results.MetaDescription,
				"detected_schemas": results.DetectedSchemas,
				"nap_data":         results.NAPData,
			},
		}
	}

	return response
}

// callerTier resolves the caller's tier: anonymous without a user, the
// declared tier (or free) with one.
func callerTier(c *gin.Context, userID string) string {
	if userID == "" {
		return tierAnonymous
	}
	if tier := c.GetHeader(headerUserTier); tier != "" {
		return tier
	}
	return tierFree
}
