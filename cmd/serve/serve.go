// Package serve implements the serve command, which runs the scanner's
// HTTP API backed by PostgreSQL.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreyshath-a11y/aeo-app/cmd/common"
	"github.com/coreyshath-a11y/aeo-app/internal/api"
	"github.com/coreyshath-a11y/aeo-app/internal/config"
	"github.com/coreyshath-a11y/aeo-app/internal/database"
	"github.com/coreyshath-a11y/aeo-app/internal/scanner"
)

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner HTTP API",
		Long: `Serve starts the HTTP API. Scans are accepted on POST /api/scan, run in
the background, and polled on GET /api/scan/:id.`,
		RunE: run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := common.NewLogger(cfg)

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	scans := database.NewScanRepository(db)
	results := database.NewResultRepository(db)
	cache := database.NewCacheRepository(db)

	engine := common.BuildEngine(cfg, log)

	runner := scanner.New(
		scanner.Config{
			ScanTimeout: cfg.Scanner.ScanTimeout,
			CacheTTL:    cfg.Scanner.CacheTTL,
		},
		engine.Pages,
		engine.Sitemap,
		engine.Robots,
		engine.Wayback,
		engine.Crux,
		engine.Scorers,
		scans,
		results,
		cache,
		log,
	)

	limiter := api.NewRateLimiter(scans)
	handler := api.NewScanHandler(scans, results, cache, limiter, runner, log)
	router := api.NewRouter(handler, log)

	return api.Serve(api.ServerConfig{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)
}
