package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

const urlsetXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://acme.example/old</loc><lastmod>2025-11-02</lastmod></url>
  <url><loc>https://acme.example/</loc><lastmod>2026-08-20T10:00:00Z</lastmod></url>
  <url><loc>https://acme.example/undated</loc></url>
</urlset>`

const indexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://acme.example/sitemap-posts.xml</loc><lastmod>2026-07-01</lastmod></sitemap>
  <sitemap><loc>https://acme.example/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`

func newSitemapFetcher() *fetch.SitemapFetcher {
	return fetch.NewSitemapFetcher(5*time.Second, "test-agent/1.0", logger.NewNoOp())
}

func TestSitemapFetcher_ParsesURLSet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(urlsetXML))
	}))
	defer server.Close()

	data := newSitemapFetcher().Fetch(context.Background(), server.URL, "")

	assert.True(t, data.Exists)
	assert.False(t, data.IsIndex)
	require.Len(t, data.Entries, 3)

	// Newest first, undated entries last.
	assert.Equal(t, "https://acme.example/", data.Entries[0].Loc)
	assert.Equal(t, "https://acme.example/old", data.Entries[1].Loc)
	assert.Equal(t, "https://acme.example/undated", data.Entries[2].Loc)
	assert.Nil(t, data.Entries[2].LastMod)
	require.NotNil(t, data.Entries[0].LastMod)
	assert.Equal(t, 2026, data.Entries[0].LastMod.Year())
}

func TestSitemapFetcher_ParsesIndex(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(indexXML))
	}))
	defer server.Close()

	data := newSitemapFetcher().Fetch(context.Background(), server.URL, "")

	assert.True(t, data.Exists)
	assert.True(t, data.IsIndex)
	require.Len(t, data.Entries, 2)
	assert.Equal(t, "https://acme.example/sitemap-posts.xml", data.Entries[0].Loc)
}

func TestSitemapFetcher_RobotsDeclaredLocation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/custom-map.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(urlsetXML))
	}))
	defer server.Close()

	data := newSitemapFetcher().Fetch(context.Background(), server.URL, server.URL+"/custom-map.xml")
	assert.True(t, data.Exists)
}

func TestSitemapFetcher_MissingOrMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"not xml", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>soft 404</html>"))
		}},
		{"empty urlset", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`))
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			data := newSitemapFetcher().Fetch(context.Background(), server.URL, "")
			assert.False(t, data.Exists)
			assert.Empty(t, data.Entries)
		})
	}
}
