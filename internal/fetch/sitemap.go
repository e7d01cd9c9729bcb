package fetch

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// maxSitemapEntries caps the number of entries carried into scoring.
const maxSitemapEntries = 20

// SitemapEntry is one <url> element of a sitemap.
type SitemapEntry struct {
	Loc     string
	LastMod *time.Time
}

// SitemapData is the scan engine's view of a site's sitemap.
type SitemapData struct {
	Exists bool
	// Entries holds at most maxSitemapEntries entries, most recently
	// modified first.
	Entries []SitemapEntry
	// IsIndex reports whether the fetched file was a sitemap index
	// rather than a urlset.
	IsIndex bool
}

type sitemapURLSet struct {
	URLs []sitemapURL `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []sitemapURL `xml:"sitemap"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// SitemapFetcher retrieves and parses /sitemap.xml. It never returns an
// error: anything short of a well-formed 200 response means Exists=false.
type SitemapFetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Interface
}

// NewSitemapFetcher creates a sitemap fetcher with the given timeout.
func NewSitemapFetcher(timeout time.Duration, userAgent string, log logger.Interface) *SitemapFetcher {
	return &SitemapFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch retrieves origin's sitemap. sitemapURL overrides the default
// /sitemap.xml location when non-empty (robots.txt can declare one).
func (f *SitemapFetcher) Fetch(ctx context.Context, origin, sitemapURL string) SitemapData {
	target := sitemapURL
	if target == "" {
		target = origin + "/sitemap.xml"
	}

	body, ok := f.get(ctx, target)
	if !ok {
		return SitemapData{}
	}

	return parseSitemap(body)
}

func (f *SitemapFetcher) get(ctx context.Context, target string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("sitemap fetch failed", "url", target, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, false
	}

	return body, true
}

// parseSitemap decodes either a urlset or a sitemap index. Entries are
// ordered by last modification, newest first; entries without a parseable
// lastmod sort last.
func parseSitemap(body []byte) SitemapData {
	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err == nil && len(set.URLs) > 0 {
		return SitemapData{Exists: true, Entries: toEntries(set.URLs)}
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		return SitemapData{Exists: true, IsIndex: true, Entries: toEntries(index.Sitemaps)}
	}

	return SitemapData{}
}

func toEntries(urls []sitemapURL) []SitemapEntry {
	entries := make([]SitemapEntry, 0, len(urls))
	for _, u := range urls {
		entry := SitemapEntry{Loc: u.Loc}
		if t, ok := parseLastMod(u.LastMod); ok {
			entry.LastMod = &t
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		switch {
		case entries[i].LastMod == nil:
			return false
		case entries[j].LastMod == nil:
			return true
		default:
			return entries[i].LastMod.After(*entries[j].LastMod)
		}
	})

	if len(entries) > maxSitemapEntries {
		entries = entries[:maxSitemapEntries]
	}

	return entries
}

// parseLastMod accepts the date formats sitemaps use in practice.
func parseLastMod(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
