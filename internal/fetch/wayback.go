package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// waybackCDXEndpoint is the Internet Archive CDX query API.
const waybackCDXEndpoint = "https://web.archive.org/cdx/search/cdx"

// waybackLimit caps the number of capture rows requested.
const waybackLimit = 100

// WaybackData summarizes a site's archive history over the last year.
// Captures are collapsed by content digest, so each one represents a
// distinct version of the page.
type WaybackData struct {
	Available bool
	Captures  int
	First     *time.Time
	Last      *time.Time
}

// WaybackClient queries the Internet Archive's CDX API. It never returns
// an error; failures yield Available=false.
type WaybackClient struct {
	client    *http.Client
	endpoint  string
	userAgent string
	log       logger.Interface
}

// NewWaybackClient creates a Wayback client with the given timeout.
func NewWaybackClient(timeout time.Duration, userAgent string, log logger.Interface) *WaybackClient {
	return &WaybackClient{
		client:    &http.Client{Timeout: timeout},
		endpoint:  waybackCDXEndpoint,
		userAgent: userAgent,
		log:       log,
	}
}

// History returns the digest-collapsed captures of domain over the
// trailing twelve months.
func (c *WaybackClient) History(ctx context.Context, domain string) WaybackData {
	now := time.Now()

	params := url.Values{}
	params.Set("url", domain)
	params.Set("output", "json")
	params.Set("from", now.AddDate(-1, 0, 0).Format("20060102"))
	params.Set("to", now.Format("20060102"))
	params.Set("collapse", "digest")
	params.Set("fl", "timestamp")
	params.Set("limit", strconv.Itoa(waybackLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return WaybackData{}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("wayback query failed", "domain", domain, "error", err)
		return WaybackData{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WaybackData{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return WaybackData{}
	}

	// CDX JSON output is an array of rows; the first row is the header.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		c.log.Debug("wayback response malformed", "domain", domain, "error", err)
		return WaybackData{}
	}
	if len(rows) < 2 {
		return WaybackData{Available: true}
	}

	captures := rows[1:]
	data := WaybackData{Available: true, Captures: len(captures)}

	if t, ok := parseCDXTimestamp(captures[0]); ok {
		data.First = &t
	}
	if t, ok := parseCDXTimestamp(captures[len(captures)-1]); ok {
		data.Last = &t
	}

	return data
}

// parseCDXTimestamp parses the 14-digit CDX timestamp in a capture row.
func parseCDXTimestamp(row []string) (time.Time, bool) {
	if len(row) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102150405", row[0])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
