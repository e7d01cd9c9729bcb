// Package scanner orchestrates a scan end to end: crawl, parse, score all
// five pillars concurrently, rank recommendations, and persist the outcome.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
	"github.com/coreyshath-a11y/aeo-app/internal/parse"
	"github.com/coreyshath-a11y/aeo-app/internal/pillars"
	"github.com/coreyshath-a11y/aeo-app/internal/recommend"
	"github.com/coreyshath-a11y/aeo-app/internal/scoring"
	"github.com/coreyshath-a11y/aeo-app/internal/urlutil"
)

// ScanStore persists scan lifecycle transitions.
type ScanStore interface {
	Get(ctx context.Context, scanID string) (*domain.ScanRecord, error)
	MarkProcessing(ctx context.Context, scanID string) error
	MarkCompleted(ctx context.Context, scanID string, totalScore int, grade string, durationMs int64) error
	MarkFailed(ctx context.Context, scanID, errorMessage string, durationMs int64) error
}

// ResultStore persists the one results row of a completed scan.
type ResultStore interface {
	Save(ctx context.Context, result *domain.ScanResult) error
}

// CacheStore maps normalized URLs to recent completed scans.
type CacheStore interface {
	Upsert(ctx context.Context, entry *domain.CacheEntry) error
}

// PageFetcher retrieves the target page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.CrawlResult, error)
}

// SitemapFetcher retrieves a site's sitemap.
type SitemapFetcher interface {
	Fetch(ctx context.Context, origin, sitemapURL string) fetch.SitemapData
}

// RobotsFetcher retrieves a site's robots.txt.
type RobotsFetcher interface {
	Fetch(ctx context.Context, origin string) fetch.RobotsData
}

// WaybackClient retrieves a site's archive history.
type WaybackClient interface {
	History(ctx context.Context, domainName string) fetch.WaybackData
}

// CruxClient retrieves a site's field performance data.
type CruxClient interface {
	Query(ctx context.Context, origin string) fetch.CruxData
}

// Config holds the orchestrator's tunables.
type Config struct {
	// ScanTimeout is the hard wall-clock ceiling for a whole scan.
	ScanTimeout time.Duration
	// CacheTTL is how long a completed scan serves repeat requests.
	CacheTTL time.Duration
	// Tier controls how much recommendation detail is persisted.
	Tier recommend.Tier
}

// Scanner runs scans. All collaborators are injected so tests can swap in
// canned fetchers and in-memory stores.
type Scanner struct {
	cfg     Config
	pages   PageFetcher
	sitemap SitemapFetcher
	robots  RobotsFetcher
	wayback WaybackClient
	crux    CruxClient
	scorers []pillars.Scorer
	scans   ScanStore
	results ResultStore
	cache   CacheStore
	log     logger.Interface
}

// New creates a scanner.
func New(
	cfg Config,
	pages PageFetcher,
	sitemap SitemapFetcher,
	robots RobotsFetcher,
	wayback WaybackClient,
	crux CruxClient,
	scorers []pillars.Scorer,
	scans ScanStore,
	results ResultStore,
	cache CacheStore,
	log logger.Interface,
) *Scanner {
	if cfg.Tier == "" {
		cfg.Tier = recommend.TierFree
	}
	return &Scanner{
		cfg:     cfg,
		pages:   pages,
		sitemap: sitemap,
		robots:  robots,
		wayback: wayback,
		crux:    crux,
		scorers: scorers,
		scans:   scans,
		results: results,
		cache:   cache,
		log:     log,
	}
}

// Run executes the scan identified by scanID against rawURL. The scan row
// is moved to processing immediately and ends in exactly one terminal
// state. The whole run races a hard timeout so a stalled site can never
// wedge a scan.
func (s *Scanner) Run(ctx context.Context, scanID, rawURL string) error {
	start := time.Now()

	if err := s.scans.MarkProcessing(ctx, scanID); err != nil {
		return fmt.Errorf("mark scan processing: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.execute(scanCtx, scanID, rawURL, start)
	}()

	var runErr error
	select {
	case runErr = <-done:
	case <-scanCtx.Done():
		runErr = fmt.Errorf("scan timeout: exceeded %s", s.cfg.ScanTimeout)
	}

	if runErr != nil {
		message := CategorizeError(runErr)
		elapsed := time.Since(start).Milliseconds()

		// Failure bookkeeping uses the parent context; the scan context
		// may already be dead.
		if markErr := s.scans.MarkFailed(ctx, scanID, message, elapsed); markErr != nil {
			s.log.Error("failed to record scan failure", "scan_id", scanID, "error", markErr)
		}

		s.log.Warn("scan failed",
			"scan_id", scanID,
			"url", rawURL,
			"duration_ms", elapsed,
			"error", runErr,
		)
		return runErr
	}

	return nil
}

func (s *Scanner) execute(ctx context.Context, scanID, rawURL string, start time.Time) error {
	crawl, err := s.pages.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	// A reachable site that answers with an error status fails the scan;
	// there is nothing meaningful to score.
	if crawl.StatusCode >= 400 {
		return fmt.Errorf("website returned error %d. The page may not exist or may be blocking our scanner", crawl.StatusCode)
	}

	content, err := parse.ExtractContent(crawl.HTML, crawl.FinalURL)
	if err != nil {
		return err
	}
	schema := parse.ExtractSchema(crawl.HTML)

	inputs := s.gatherInputs(ctx, crawl, content, schema)

	results := s.scoreAll(ctx, inputs)

	score := scoring.Calculate(results)
	recs := recommend.Rank(results, s.cfg.Tier)

	result := buildResult(scanID, crawl, content, schema, results, recs)
	if err := s.results.Save(ctx, result); err != nil {
		return fmt.Errorf("save scan result: %w", err)
	}

	elapsed := time.Since(start).Milliseconds()
	if err := s.scans.MarkCompleted(ctx, scanID, score.TotalScore, score.Grade, elapsed); err != nil {
		return fmt.Errorf("mark scan completed: %w", err)
	}

	s.updateCache(ctx, scanID)

	s.log.Info("scan completed",
		"scan_id", scanID,
		"url", rawURL,
		"score", score.TotalScore,
		"grade", score.Grade,
		"duration_ms", elapsed,
	)

	return nil
}

// gatherInputs fetches the auxiliary data sources concurrently. The sitemap
// fetch waits for robots.txt because robots.txt may declare where the
// sitemap lives.
func (s *Scanner) gatherInputs(
	ctx context.Context,
	crawl *domain.CrawlResult,
	content *parse.PageContent,
	schema *parse.SchemaData,
) pillars.Inputs {
	origin := urlutil.Origin(crawl.FinalURL)
	domainName := urlutil.Domain(crawl.FinalURL)

	inputs := pillars.Inputs{
		Crawl:   crawl,
		Content: content,
		Schema:  schema,
		Now:     time.Now(),
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		inputs.Robots = s.robots.Fetch(ctx, origin)

		sitemapURL := ""
		if len(inputs.Robots.Sitemaps) > 0 {
			sitemapURL = inputs.Robots.Sitemaps[0]
		}
		inputs.Sitemap = s.sitemap.Fetch(ctx, origin, sitemapURL)
	}()

	go func() {
		defer wg.Done()
		inputs.Wayback = s.wayback.History(ctx, domainName)
	}()

	go func() {
		defer wg.Done()
		inputs.Crux = s.crux.Query(ctx, origin)
	}()

	wg.Wait()
	return inputs
}

// scoreAll fans the scorers out concurrently; each writes only its own slot.
func (s *Scanner) scoreAll(ctx context.Context, inputs pillars.Inputs) map[domain.Pillar]domain.ModuleResult {
	results := make(map[domain.Pillar]domain.ModuleResult, len(s.scorers))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, scorer := range s.scorers {
		wg.Add(1)
		go func(scorer pillars.Scorer) {
			defer wg.Done()
			r := scorer.Score(ctx, inputs)
			mu.Lock()
			results[scorer.Pillar()] = r
			mu.Unlock()
		}(scorer)
	}
	wg.Wait()

	return results
}

// buildResult assembles the persisted results row, including the scan's
// metadata block.
func buildResult(
	scanID string,
	crawl *domain.CrawlResult,
	content *parse.PageContent,
	schema *parse.SchemaData,
	results map[domain.Pillar]domain.ModuleResult,
	recs []domain.Recommendation,
) *domain.ScanResult {
	entity := schema.Entity()
	nap := resolveNAP(entity, crawl.HTML)

	result := &domain.ScanResult{
		ScanID: scanID,

		EntityVerifiabilityScore:  results[domain.PillarEntityVerifiability].Score,
		ExtractabilitySchemaScore: results[domain.PillarExtractabilitySchema].Score,
		FreshnessMaintenanceScore: results[domain.PillarFreshnessMaintenance].Score,
		TrustRiskScore:            results[domain.PillarTrustRisk].Score,
		AnswerabilityScore:        results[domain.PillarAnswerabilityCoverage].Score,

		EntitySignals:        domain.JSONB(results[domain.PillarEntityVerifiability].Signals),
		SchemaSignals:        domain.JSONB(results[domain.PillarExtractabilitySchema].Signals),
		FreshnessSignals:     domain.JSONB(results[domain.PillarFreshnessMaintenance].Signals),
		TrustSignals:         domain.JSONB(results[domain.PillarTrustRisk].Signals),
		AnswerabilitySignals: domain.JSONB(results[domain.PillarAnswerabilityCoverage].Signals),

		DetectedSchemas: domain.JSONB(schema.Types),
		NAPData:         domain.JSONB(nap),
		Recommendations: domain.JSONB(recs),

		CreatedAt: time.Now(),
	}

	if content.Title != "" {
		result.MetaTitle = &content.Title
	}
	if content.MetaDescription != "" {
		result.MetaDescription = &content.MetaDescription
	}

	return result
}

// resolveNAP picks the scan's canonical NAP triplet. Schema fields win;
// the visible page fills the gaps and determines the fallback source.
func resolveNAP(entity parse.Block, html string) domain.NAPData {
	schemaNAP := parse.ExtractNAPFromSchema(entity)
	htmlNAP := parse.ExtractNAPFromHTML(html)

	nap := domain.NAPData{Source: domain.NAPSourceNone}

	pick := func(schema, html []string) *string {
		if len(schema) > 0 {
			return &schema[0]
		}
		if len(html) > 0 {
			return &html[0]
		}
		return nil
	}

	nap.Name = pick(schemaNAP.Names, htmlNAP.Names)
	nap.Address = pick(schemaNAP.Addresses, htmlNAP.Addresses)
	nap.Phone = pick(schemaNAP.Phones, htmlNAP.Phones)

	switch {
	case entity != nil && len(htmlNAP.Names) > 0:
		nap.Source = domain.NAPSourceBoth
	case entity != nil:
		nap.Source = domain.NAPSourceSchema
	case len(htmlNAP.Names) > 0:
		nap.Source = domain.NAPSourceHTML
	}

	return nap
}

// updateCache records the completed scan against its normalized URL.
// Cache trouble is logged and swallowed; the scan itself succeeded.
func (s *Scanner) updateCache(ctx context.Context, scanID string) {
	record, err := s.scans.Get(ctx, scanID)
	if err != nil || record == nil || record.NormalizedURL == "" {
		if err != nil {
			s.log.Warn("cache update skipped", "scan_id", scanID, "error", err)
		}
		return
	}

	now := time.Now()
	entry := &domain.CacheEntry{
		NormalizedURL: record.NormalizedURL,
		ScanID:        scanID,
		CachedAt:      now,
		ExpiresAt:     now.Add(s.cfg.CacheTTL),
	}
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.log.Warn("cache update failed", "scan_id", scanID, "error", err)
	}
}
