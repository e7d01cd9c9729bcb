// Package common wires the scan engine's shared dependencies for the CLI
// commands.
package common

import (
	"github.com/coreyshath-a11y/aeo-app/internal/config"
	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
	"github.com/coreyshath-a11y/aeo-app/internal/pillars"
)

// Engine bundles the fetch clients and pillar scorers a scan needs.
type Engine struct {
	Pages   *fetch.PageFetcher
	Sitemap *fetch.SitemapFetcher
	Robots  *fetch.RobotsFetcher
	Wayback *fetch.WaybackClient
	Crux    *fetch.CruxClient
	Scorers []pillars.Scorer
}

// NewLogger builds the application logger from config.
func NewLogger(cfg *config.Config) logger.Interface {
	return logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	})
}

// BuildEngine constructs the fetch clients and the five pillar scorers.
func BuildEngine(cfg *config.Config, log logger.Interface) *Engine {
	pages := fetch.NewPageFetcher(fetch.PageFetcherConfig{
		UserAgent:       cfg.Scanner.UserAgent,
		FetchTimeout:    cfg.Scanner.FetchTimeout,
		TLSProbeTimeout: cfg.Scanner.TLSProbeTimeout,
		MaxRedirects:    cfg.Scanner.MaxRedirects,
		MaxBodyBytes:    cfg.Scanner.MaxBodyBytes,
	}, log)

	geocoder := fetch.NewGeocoder(
		cfg.Clients.GeocodeTimeout,
		cfg.Clients.GeocodeInterval,
		cfg.Scanner.UserAgent,
		log,
	)
	links := fetch.NewHeadChecker(cfg.Clients.HeadCheckTimeout, cfg.Scanner.UserAgent, log)

	return &Engine{
		Pages:   pages,
		Sitemap: fetch.NewSitemapFetcher(cfg.Clients.SitemapTimeout, cfg.Scanner.UserAgent, log),
		Robots:  fetch.NewRobotsFetcher(cfg.Clients.RobotsTimeout, cfg.Scanner.UserAgent, log),
		Wayback: fetch.NewWaybackClient(cfg.Clients.WaybackTimeout, cfg.Scanner.UserAgent, log),
		Crux:    fetch.NewCruxClient(cfg.Clients.CruxTimeout, cfg.Clients.CruxAPIKey, log),
		Scorers: []pillars.Scorer{
			pillars.NewEntityScorer(geocoder, links),
			pillars.NewExtractabilityScorer(),
			pillars.NewFreshnessScorer(links),
			pillars.NewTrustScorer(),
			pillars.NewAnswerabilityScorer(),
		},
	}
}
