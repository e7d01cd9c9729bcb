package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/parse"
)

const samplePage = `<html><head>
	<title>Acme Plumbing | Springfield</title>
	<meta name="description" content="Trusted plumbers since 1985.">
	<meta property="og:site_name" content="Acme Plumbing">
	<link rel="canonical" href="https://acme.example/">
	<script>console.log("should not appear in body text");</script>
</head><body>
	<h1>Acme Plumbing</h1>
	<h2>Our Services</h2>
	<h2>Contact</h2>
	<h3>Drain Cleaning</h3>
	<p>We fix   pipes    fast.</p>
	<a href="/about">About</a>
	<a href="/about">About again</a>
	<a href="https://acme.example/contact">Contact</a>
	<a href="https://facebook.com/acme">Facebook</a>
	<a href="#top">Top</a>
	<a href="mailto:info@acme.example">Email</a>
	<a href="tel:5551234567">Call</a>
	<details><summary>Do you work weekends?</summary>Yes.</details>
</body></html>`

func TestExtractContent(t *testing.T) {
	t.Parallel()

	content, err := parse.ExtractContent(samplePage, "https://acme.example/")
	require.NoError(t, err)

	assert.Equal(t, "Acme Plumbing | Springfield", content.Title)
	assert.Equal(t, "Trusted plumbers since 1985.", content.MetaDescription)
	assert.Equal(t, "Acme Plumbing", content.OGSiteName)
	assert.Equal(t, "https://acme.example/", content.CanonicalURL)
	assert.Equal(t, []string{"Acme Plumbing"}, content.H1s)
	assert.Equal(t, []string{"Our Services", "Contact"}, content.H2s)
	assert.Equal(t, []string{"Drain Cleaning"}, content.H3s)
	assert.Equal(t, 1, content.DetailsWithSummary)

	// Whitespace collapsed, script text stripped.
	assert.Contains(t, content.BodyText, "We fix pipes fast.")
	assert.NotContains(t, content.BodyText, "should not appear")
	assert.Positive(t, content.WordCount)
}

func TestExtractContent_LinkSplit(t *testing.T) {
	t.Parallel()

	content, err := parse.ExtractContent(samplePage, "https://acme.example/")
	require.NoError(t, err)

	// Relative links resolve against the page URL; duplicates collapse;
	// fragment, mailto, and tel links are skipped.
	assert.Equal(t, []string{
		"https://acme.example/about",
		"https://acme.example/contact",
	}, content.InternalLinks)
	assert.Equal(t, []string{"https://facebook.com/acme"}, content.ExternalLinks)
}

func TestExtractContent_MixedContent(t *testing.T) {
	t.Parallel()

	html := `<html><body><img src="http://insecure.example/logo.png"></body></html>`

	httpsPage, err := parse.ExtractContent(html, "https://acme.example/")
	require.NoError(t, err)
	assert.True(t, httpsPage.HasMixedContent)

	// A page served over plain HTTP cannot have mixed content.
	httpPage, err := parse.ExtractContent(html, "http://acme.example/")
	require.NoError(t, err)
	assert.False(t, httpPage.HasMixedContent)
}

func TestExtractContent_EmptyPage(t *testing.T) {
	t.Parallel()

	content, err := parse.ExtractContent("", "https://acme.example/")
	require.NoError(t, err)

	assert.Empty(t, content.Title)
	assert.Zero(t, content.WordCount)
	assert.Empty(t, content.InternalLinks)
}
