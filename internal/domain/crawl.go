package domain

import "time"

// TLSInfo describes the certificate and protocol negotiated with the final
// HTTPS host. A nil TLSInfo on a CrawlResult means the probe failed or the
// site is plain HTTP; that is data, not an error.
type TLSInfo struct {
	Valid     bool      `json:"valid"`
	Issuer    string    `json:"issuer"`
	ExpiresAt time.Time `json:"expires_at"`
	Protocol  string    `json:"protocol"`
}

// CrawlResult is the immutable snapshot of one page fetch. It is created
// once per scan by the orchestrator and read-only afterward.
type CrawlResult struct {
	// HTML is the response body, truncated at the fetcher's size cap.
	HTML string `json:"html"`

	// StatusCode is the status of the final response after redirects.
	StatusCode int `json:"status_code"`

	// Headers holds the final response headers with lowercased keys.
	Headers map[string]string `json:"headers"`

	// RedirectChain lists the URLs visited before the final one, in order.
	RedirectChain []string `json:"redirect_chain"`

	// FinalURL is the fully resolved URL after following redirects.
	FinalURL string `json:"final_url"`

	// Elapsed is the wall-clock time of the whole fetch.
	Elapsed time.Duration `json:"elapsed"`

	// TLS describes the certificate of the final HTTPS host, if any.
	TLS *TLSInfo `json:"tls,omitempty"`
}

// IsHTTPS reports whether the final URL was served over HTTPS.
func (c *CrawlResult) IsHTTPS() bool {
	return len(c.FinalURL) >= 8 && c.FinalURL[:8] == "https://"
}
