package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NAP holds name/address/phone candidates extracted from one source.
type NAP struct {
	Names     []string
	Addresses []string
	Phones    []string
	Emails    []string
}

// NAPConsistency is the field-by-field outcome of comparing the schema's
// NAP against what the visible page says.
type NAPConsistency struct {
	NameMatch    bool
	PhoneMatch   bool
	AddressMatch bool
}

// US/CA phone numbers, optionally with an extension.
var phoneRe = regexp.MustCompile(`(?i)(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}(?:\s*(?:ext|x|extension)\s*\d+)?`)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// US street addresses ending in a ZIP code. Catches most formats.
var addressRe = regexp.MustCompile(`(?i)\d{1,5}\s+(?:[A-Za-z0-9]+\s){1,4}(?:St(?:reet)?|Ave(?:nue)?|Blvd|Boulevard|Dr(?:ive)?|Rd|Road|Ln|Lane|Way|Ct|Court|Pl(?:ace)?|Pkwy|Parkway|Cir(?:cle)?|Hwy|Highway)[.,]?\s*(?:(?:Suite|Ste|Apt|Unit|#)\s*[A-Za-z0-9-]+[.,]?\s*)?(?:[A-Za-z\s]+,\s*)?(?:[A-Z]{2}\s+)?\d{5}(?:-\d{4})?`)

var titleSplitRe = regexp.MustCompile(`[|\x{2013}\x{2014}-]`)

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizePhone reduces a phone number to bare digits with any leading
// country code 1 removed, so formatting differences never break a match.
func NormalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	return strings.TrimPrefix(digits, "1")
}

// ExtractNAPFromHTML pulls NAP candidates out of the visible page text.
// Business name candidates come from the title's first segment, the
// og:site_name, and the first h1.
func ExtractNAPFromHTML(html string) NAP {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return NAP{}
	}

	doc.Find("script, style, noscript").Remove()
	bodyText := doc.Find("body").Text()

	nap := NAP{
		Phones:    dedupe(mapStrings(phoneRe.FindAllString(bodyText, -1), NormalizePhone)),
		Emails:    dedupe(mapStrings(emailRe.FindAllString(bodyText, -1), strings.ToLower)),
		Addresses: dedupe(mapStrings(addressRe.FindAllString(bodyText, -1), strings.TrimSpace)),
	}

	var names []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		namePart := strings.TrimSpace(titleSplitRe.Split(title, 2)[0])
		if len(namePart) > 1 && len(namePart) < 100 {
			names = append(names, namePart)
		}
	}
	if siteName := strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).AttrOr("content", "")); siteName != "" {
		names = append(names, siteName)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); len(h1) > 1 && len(h1) < 100 {
		names = append(names, h1)
	}
	nap.Names = dedupe(names)

	return nap
}

// ExtractNAPFromSchema pulls the NAP fields out of the page's entity block.
func ExtractNAPFromSchema(entity Block) NAP {
	if entity == nil {
		return NAP{}
	}

	nap := NAP{}
	if name := entity.Str("name"); name != "" {
		nap.Names = append(nap.Names, name)
	}
	if phone := entity.Str("telephone"); phone != "" {
		nap.Phones = append(nap.Phones, NormalizePhone(phone))
	}
	if email := entity.Str("email"); email != "" {
		nap.Emails = append(nap.Emails, strings.ToLower(email))
	}
	if addr := entity.Address(); addr != "" {
		nap.Addresses = append(nap.Addresses, addr)
	}

	return nap
}

// CheckNAPConsistency compares the schema's NAP against the page's. Names
// match on case-insensitive containment either way; phones on normalized
// equality; addresses when enough tokens of a schema address appear in a
// page address.
func CheckNAPConsistency(htmlNAP, schemaNAP NAP) NAPConsistency {
	result := NAPConsistency{}

	for _, sn := range schemaNAP.Names {
		for _, hn := range htmlNAP.Names {
			snLower, hnLower := strings.ToLower(sn), strings.ToLower(hn)
			if strings.Contains(hnLower, snLower) || strings.Contains(snLower, hnLower) {
				result.NameMatch = true
			}
		}
	}

	for _, sp := range schemaNAP.Phones {
		for _, hp := range htmlNAP.Phones {
			if sp == hp {
				result.PhoneMatch = true
			}
		}
	}

	for _, sa := range schemaNAP.Addresses {
		for _, ha := range htmlNAP.Addresses {
			if addressTokensMatch(sa, ha) {
				result.AddressMatch = true
			}
		}
	}

	return result
}

// addressTokensMatch reports whether enough tokens of the schema address
// appear in the page address. Short addresses need every token; longer
// ones need at least three.
func addressTokensMatch(schemaAddr, htmlAddr string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(schemaAddr), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(tokens) == 0 {
		return false
	}

	htmlLower := strings.ToLower(htmlAddr)

	matched := 0
	for _, token := range tokens {
		if strings.Contains(htmlLower, token) {
			matched++
		}
	}

	required := 3
	if len(tokens) < required {
		required = len(tokens)
	}

	return matched >= required
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, fn(s))
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
