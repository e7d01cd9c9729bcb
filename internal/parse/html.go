// Package parse extracts structured signals from a fetched page: visible
// content, JSON-LD schema blocks, and name/address/phone candidates.
package parse

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageContent is the visible-content view of a page.
type PageContent struct {
	Title           string
	MetaDescription string
	H1s             []string
	H2s             []string
	H3s             []string
	BodyText        string
	WordCount       int
	InternalLinks   []string
	ExternalLinks   []string
	CanonicalURL    string
	HasMixedContent bool
	OGSiteName      string
	OGTitle         string
	OGDescription   string
	// DetailsWithSummary counts <details> elements carrying a <summary>,
	// a common FAQ markup pattern.
	DetailsWithSummary int
}

// ExtractContent parses the page HTML and pulls out the signals the
// scorers read. pageURL is the final URL the page was served from; links
// are resolved against it.
func ExtractContent(html, pageURL string) (*PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := &PageContent{
		DetailsWithSummary: doc.Find("details").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find("summary").Length() > 0
		}).Length(),
		CanonicalURL:    doc.Find(`link[rel="canonical"]`).AttrOr("href", ""),
		MetaDescription: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		OGSiteName:      strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).AttrOr("content", "")),
		OGTitle:         strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", "")),
		OGDescription:   strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", "")),
	}

	// Mixed content must be checked before scripts are stripped.
	if strings.HasPrefix(pageURL, "https://") {
		mixed := doc.Find(`img[src^="http://"], script[src^="http://"], link[href^="http://"]`)
		content.HasMixedContent = mixed.Length() > 0
	}

	doc.Find("script, style, noscript").Remove()

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	content.H1s = headingTexts(doc, "h1")
	content.H2s = headingTexts(doc, "h2")
	content.H3s = headingTexts(doc, "h3")

	content.BodyText = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	content.WordCount = len(strings.Fields(content.BodyText))

	content.InternalLinks, content.ExternalLinks = extractLinks(doc, pageURL)

	return content, nil
}

func headingTexts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// extractLinks collects deduplicated absolute links, split into same-origin
// and external. Fragment-only, mailto:, tel:, and javascript: hrefs are
// skipped.
func extractLinks(doc *goquery.Document, pageURL string) (internal, external []string) {
	base, baseErr := url.Parse(pageURL)

	origin := ""
	if baseErr == nil && base.Host != "" {
		origin = base.Scheme + "://" + base.Host
	}

	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}
		if baseErr != nil {
			return
		}

		rel, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(rel).String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		if origin != "" && strings.HasPrefix(resolved, origin) {
			internal = append(internal, resolved)
		} else {
			external = append(external, resolved)
		}
	})

	return internal, external
}
