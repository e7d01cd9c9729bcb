// Package fetch provides the HTTP clients the scan engine talks to: the
// target page itself plus the auxiliary data sources (sitemap, robots.txt,
// archive history, field performance data, geocoding, liveness probes).
// Auxiliary fetchers fail soft: they return explicit no-data results and
// never let an error cross the package boundary.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// acceptHTML is the Accept header sent with page requests.
const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// PageFetcherConfig configures the page fetcher.
type PageFetcherConfig struct {
	// UserAgent is a realistic browser profile; bare bot agents trip
	// anti-bot rules and produce false "blocked" results.
	UserAgent string
	// FetchTimeout applies to each redirect hop independently.
	FetchTimeout time.Duration
	// TLSProbeTimeout bounds the certificate inspection handshake.
	TLSProbeTimeout time.Duration
	// MaxRedirects caps the number of hops followed.
	MaxRedirects int
	// MaxBodyBytes truncates (not fails) bodies past this size.
	MaxBodyBytes int64
}

// PageFetcher retrieves the target page, following redirects manually so
// the full chain is captured, and probes the final host's TLS certificate.
type PageFetcher struct {
	client *http.Client
	cfg    PageFetcherConfig
	log    logger.Interface
}

// NewPageFetcher creates a page fetcher. The underlying client never
// follows redirects on its own; the fetcher tracks the chain itself.
func NewPageFetcher(cfg PageFetcherConfig, log logger.Interface) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cfg: cfg,
		log: log,
	}
}

// Fetch retrieves rawURL and returns the crawl snapshot. Network-level
// failures (DNS, refused connections, per-hop timeouts) are returned as
// errors; they are the only fetch failures that can fail a whole scan.
// A final status >= 400 is returned as data for the caller to classify.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (*domain.CrawlResult, error) {
	start := time.Now()
	redirectChain := make([]string, 0, f.cfg.MaxRedirects)
	currentURL := rawURL

	var resp *http.Response

	for hop := 0; ; hop++ {
		var fetchErr error
		resp, fetchErr = f.doRequest(ctx, currentURL)
		if fetchErr != nil {
			return nil, fetchErr
		}

		location := resp.Header.Get("Location")
		if resp.StatusCode < 300 || resp.StatusCode >= 400 || location == "" {
			break
		}
		// Out of hops: return the last redirect as data.
		if hop >= f.cfg.MaxRedirects {
			break
		}

		// Redirect: drain and move on to the next hop.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
		resp.Body.Close()

		next, resolveErr := resolveLocation(currentURL, location)
		if resolveErr != nil {
			return nil, fmt.Errorf("resolve redirect target %q: %w", location, resolveErr)
		}

		redirectChain = append(redirectChain, currentURL)
		currentURL = next
	}

	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	result := &domain.CrawlResult{
		HTML:          string(body),
		StatusCode:    resp.StatusCode,
		Headers:       lowercaseHeaders(resp.Header),
		RedirectChain: redirectChain,
		FinalURL:      currentURL,
		Elapsed:       time.Since(start),
	}

	// TLS details are best effort: a probe failure leaves TLS nil and the
	// trust scorer treats that as data.
	if parsed, parseErr := url.Parse(currentURL); parseErr == nil && parsed.Scheme == "https" {
		result.TLS = f.probeTLS(parsed.Host)
	}

	f.log.Debug("page fetched",
		"url", rawURL,
		"final_url", currentURL,
		"status", resp.StatusCode,
		"redirects", len(redirectChain),
		"bytes", len(body),
	)

	return result, nil
}

// doRequest performs one GET with its own per-hop timeout.
func (f *PageFetcher) doRequest(ctx context.Context, target string) (*http.Response, error) {
	hopCtx, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)

	req, reqErr := http.NewRequestWithContext(hopCtx, http.MethodGet, target, http.NoBody)
	if reqErr != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", reqErr)
	}

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", acceptHTML)

	resp, doErr := f.client.Do(req)
	if doErr != nil {
		cancel()
		return nil, fmt.Errorf("fetch %s: %w", target, doErr)
	}

	// The body must remain readable after this hop; tie the context's
	// lifetime to the body.
	resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

// cancelOnCloseBody releases the per-hop context when the body is closed.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// resolveLocation resolves a redirect Location header against the URL it
// was served from.
func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	loc, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(loc).String(), nil
}

// lowercaseHeaders flattens response headers to a map with lowercased keys,
// keeping the first value of each.
func lowercaseHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(key)] = values[0]
	}
	return out
}
