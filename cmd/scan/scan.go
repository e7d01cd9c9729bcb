// Package scan implements the scan command, which runs a single scan from
// the terminal and prints the scorecard. No database is required; results
// are held in memory and rendered once the scan finishes.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/coreyshath-a11y/aeo-app/cmd/common"
	"github.com/coreyshath-a11y/aeo-app/internal/config"
	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/recommend"
	"github.com/coreyshath-a11y/aeo-app/internal/scanner"
	"github.com/coreyshath-a11y/aeo-app/internal/scoring"
	"github.com/coreyshath-a11y/aeo-app/internal/urlutil"
)

// Command returns the scan command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan a single website and print the scorecard",
		Long: `Scan audits one website and prints its AI visibility scorecard.

Examples:
  # Scan a site
  aeoscan scan example.com

  # Include full remediation detail
  aeoscan scan example.com --tier pro
`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	cmd.Flags().String("tier", string(recommend.TierFree), "recommendation detail tier (free, monitoring, diy, pro)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	targetURL, err := urlutil.Validate(args[0])
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", args[0], err)
	}

	tier, _ := cmd.Flags().GetString("tier")

	log := common.NewLogger(cfg)
	engine := common.BuildEngine(cfg, log)

	store := newMemoryStore()
	scanID := "sc_" + uuid.NewString()
	store.scans[scanID] = &domain.ScanRecord{
		ID:            scanID,
		URL:           targetURL,
		NormalizedURL: urlutil.Normalize(targetURL),
		Status:        domain.ScanStatusPending,
		CreatedAt:     time.Now(),
	}

	runner := scanner.New(
		scanner.Config{
			ScanTimeout: cfg.Scanner.ScanTimeout,
			CacheTTL:    cfg.Scanner.CacheTTL,
			Tier:        recommend.Tier(tier),
		},
		engine.Pages,
		engine.Sitemap,
		engine.Robots,
		engine.Wayback,
		engine.Crux,
		engine.Scorers,
		store,
		store,
		store,
		log,
	)

	fmt.Printf("Scanning %s ...\n\n", targetURL)

	if runErr := runner.Run(cmd.Context(), scanID, targetURL); runErr != nil {
		record, _ := store.Get(cmd.Context(), scanID)
		if record != nil && record.ErrorMessage != nil {
			return errors.New(*record.ErrorMessage)
		}
		return runErr
	}

	record, _ := store.Get(cmd.Context(), scanID)
	render(record, store.result)

	return nil
}

// render prints the scorecard tables for a completed scan.
func render(record *domain.ScanRecord, result *domain.ScanResult) {
	if record == nil || result == nil {
		fmt.Println("No results.")
		return
	}

	score, grade := 0, "?"
	if record.TotalScore != nil {
		score = *record.TotalScore
	}
	if record.Grade != nil {
		grade = *record.Grade
	}
	fmt.Printf("%s scored %d/100 (%s, %s)", record.URL, score, grade, scoring.GradeLabel(score))
	if record.ScanDuration != nil {
		fmt.Printf(" in %dms", *record.ScanDuration)
	}
	fmt.Print("\n\n")

	pillarScores := map[domain.Pillar]int{
		domain.PillarEntityVerifiability:   result.EntityVerifiabilityScore,
		domain.PillarExtractabilitySchema:  result.ExtractabilitySchemaScore,
		domain.PillarFreshnessMaintenance:  result.FreshnessMaintenanceScore,
		domain.PillarTrustRisk:             result.TrustRiskScore,
		domain.PillarAnswerabilityCoverage: result.AnswerabilityScore,
	}

	pillarTable := table.NewWriter()
	pillarTable.SetOutputMirror(os.Stdout)
	pillarTable.AppendHeader(table.Row{"Pillar", "Score", "Max"})
	for _, pillar := range domain.Pillars {
		pillarTable.AppendRow(table.Row{
			domain.PillarLabels[pillar],
			pillarScores[pillar],
			domain.PillarMaxPoints[pillar],
		})
	}
	pillarTable.AppendFooter(table.Row{"Total", score, 100})
	pillarTable.Render()

	recs, ok := result.Recommendations.V.([]domain.Recommendation)
	if !ok || len(recs) == 0 {
		return
	}

	fmt.Println()
	recTable := table.NewWriter()
	recTable.SetOutputMirror(os.Stdout)
	recTable.AppendHeader(table.Row{"#", "Recommendation", "Impact", "Difficulty", "Points"})
	recTable.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	for i, rec := range recs {
		recTable.AppendRow(table.Row{
			i + 1,
			rec.Title,
			rec.Impact,
			rec.Difficulty,
			rec.PointsRecoverable,
		})
	}
	recTable.Render()

	for _, rec := range recs {
		if rec.HowToFix == "" {
			continue
		}
		fmt.Printf("\n%s\n  %s\n", rec.Title, rec.HowToFix)
	}
}

// memoryStore is the in-memory scan/result/cache store backing a one-off
// CLI scan.
type memoryStore struct {
	mu     sync.Mutex
	scans  map[string]*domain.ScanRecord
	result *domain.ScanResult
}

func newMemoryStore() *memoryStore {
	return &memoryStore{scans: make(map[string]*domain.ScanRecord)}
}

func (m *memoryStore) Get(_ context.Context, scanID string) (*domain.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.scans[scanID]
	if !ok {
		return nil, fmt.Errorf("scan %s not found", scanID)
	}
	return record, nil
}

func (m *memoryStore) MarkProcessing(_ context.Context, scanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record := m.scans[scanID]; record != nil {
		record.Status = domain.ScanStatusProcessing
	}
	return nil
}

func (m *memoryStore) MarkCompleted(_ context.Context, scanID string, totalScore int, grade string, durationMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record := m.scans[scanID]; record != nil {
		now := time.Now()
		record.Status = domain.ScanStatusCompleted
		record.TotalScore = &totalScore
		record.Grade = &grade
		record.ScanDuration = &durationMs
		record.CompletedAt = &now
	}
	return nil
}

func (m *memoryStore) MarkFailed(_ context.Context, scanID, errorMessage string, durationMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record := m.scans[scanID]; record != nil {
		record.Status = domain.ScanStatusFailed
		record.ErrorMessage = &errorMessage
		record.ScanDuration = &durationMs
	}
	return nil
}

func (m *memoryStore) Save(_ context.Context, result *domain.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
	return nil
}

func (m *memoryStore) Upsert(_ context.Context, _ *domain.CacheEntry) error {
	return nil
}
