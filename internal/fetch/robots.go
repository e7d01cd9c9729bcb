package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// AIBots are the crawler agents of the major answer engines. Each one is
// tested against the site's robots.txt.
var AIBots = []string{
	"GPTBot",
	"Google-Extended",
	"CCBot",
	"anthropic-ai",
	"PerplexityBot",
	"Bytespider",
}

// RobotsData is the scan engine's view of a site's robots.txt.
type RobotsData struct {
	Exists bool
	// BotAccess maps each AI bot to whether it may fetch the root path.
	BotAccess map[string]bool
	// Sitemaps lists sitemap URLs declared in the file.
	Sitemaps []string
}

// allowAll is the degraded result when robots.txt is missing or unreadable.
// An unreadable file must never count against the site.
func allowAll(exists bool) RobotsData {
	access := make(map[string]bool, len(AIBots))
	for _, bot := range AIBots {
		access[bot] = true
	}
	return RobotsData{Exists: exists, BotAccess: access}
}

// RobotsFetcher retrieves and evaluates robots.txt. It never returns an
// error; failures degrade to an allow-all result.
type RobotsFetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Interface
}

// NewRobotsFetcher creates a robots fetcher with the given timeout.
func NewRobotsFetcher(timeout time.Duration, userAgent string, log logger.Interface) *RobotsFetcher {
	return &RobotsFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch retrieves origin's robots.txt and evaluates each AI bot's access
// to the root path.
func (f *RobotsFetcher) Fetch(ctx context.Context, origin string) RobotsData {
	target := origin + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return allowAll(false)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("robots fetch failed", "url", target, "error", err)
		return allowAll(false)
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		f.log.Debug("robots parse failed", "url", target, "error", err)
		return allowAll(resp.StatusCode == http.StatusOK)
	}

	if resp.StatusCode != http.StatusOK {
		return allowAll(false)
	}

	access := make(map[string]bool, len(AIBots))
	for _, bot := range AIBots {
		access[bot] = robots.FindGroup(bot).Test("/")
	}

	return RobotsData{
		Exists:    true,
		BotAccess: access,
		Sitemaps:  robots.Sitemaps,
	}
}
