package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// HeadChecker probes URLs for liveness with HEAD requests. Used to verify
// internal links and social profile links without downloading bodies.
type HeadChecker struct {
	client    *http.Client
	userAgent string
	log       logger.Interface
}

// NewHeadChecker creates a head checker with a per-request timeout.
// Redirects are followed so a link that lands somewhere alive counts.
func NewHeadChecker(timeout time.Duration, userAgent string, log logger.Interface) *HeadChecker {
	return &HeadChecker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Alive reports whether target responds with a non-error status. Servers
// that reject HEAD with 405 get one GET retry.
func (h *HeadChecker) Alive(ctx context.Context, target string) bool {
	status, ok := h.do(ctx, http.MethodHead, target)
	if !ok {
		return false
	}

	if status == http.StatusMethodNotAllowed {
		status, ok = h.do(ctx, http.MethodGet, target)
		if !ok {
			return false
		}
	}

	return status < 400
}

func (h *HeadChecker) do(ctx context.Context, method, target string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return 0, false
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Debug("head check failed", "url", target, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	// Drain a little so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))

	return resp.StatusCode, true
}
