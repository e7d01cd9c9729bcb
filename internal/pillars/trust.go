package pillars

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreyshath-a11y/aeo-app/internal/domain"
)

// securityHeaderNames are the response headers checked, one point each.
var securityHeaderNames = []string{
	"strict-transport-security",
	"x-content-type-options",
	"x-frame-options",
}

// TrustSignals is the raw evidence behind the trust score.
type TrustSignals struct {
	HTTPSValid       bool            `json:"https_valid"`
	TLS              *domain.TLSInfo `json:"tls,omitempty"`
	SecurityHeaders  map[string]bool `json:"security_headers"`
	CruxHasData      bool            `json:"crux_has_data"`
	CruxLCP          *float64        `json:"crux_lcp,omitempty"`
	CruxCLS          *float64        `json:"crux_cls,omitempty"`
	CruxINP          *float64        `json:"crux_inp,omitempty"`
	HasMixedContent  bool            `json:"has_mixed_content"`
	HasPrivacyPolicy bool            `json:"has_privacy_policy"`
}

// TrustScorer measures security and real-user performance: TLS, security
// headers, Core Web Vitals, mixed content, and a privacy policy. Missing
// field data earns a neutral score rather than a penalty.
type TrustScorer struct{}

// NewTrustScorer creates the trust scorer.
func NewTrustScorer() *TrustScorer { return &TrustScorer{} }

// Pillar identifies the dimension this scorer covers.
func (s *TrustScorer) Pillar() domain.Pillar { return domain.PillarTrustRisk }

// Score runs the trust checks.
func (s *TrustScorer) Score(_ context.Context, in Inputs) domain.ModuleResult {
	var checks []domain.CheckResult
	var recs []domain.Recommendation

	// HTTPS with a valid certificate.
	httpsPartial := strings.HasPrefix(in.Crawl.FinalURL, "https://")
	httpsValid := httpsPartial && in.Crawl.TLS != nil && in.Crawl.TLS.Valid
	httpsScore := 0
	httpsDetails := "Site does not use HTTPS"
	switch {
	case httpsValid:
		httpsScore = 3
		protocol := "TLS"
		issuer := "unknown issuer"
		if in.Crawl.TLS.Protocol != "" {
			protocol = in.Crawl.TLS.Protocol
		}
		if in.Crawl.TLS.Issuer != "" {
			issuer = in.Crawl.TLS.Issuer
		}
		httpsDetails = fmt.Sprintf("Valid HTTPS with %s from %s", protocol, issuer)
	case httpsPartial:
		httpsScore = 2
		httpsDetails = "HTTPS is enabled but certificate may have issues"
	}
	checks = append(checks, domain.CheckResult{
		ID:       "https_valid",
		Label:    "Secure Connection (HTTPS)",
		Passed:   httpsValid,
		Score:    httpsScore,
		MaxScore: 3,
		Details:  httpsDetails,
	})
	if !httpsValid {
		title := "Enable HTTPS"
		difficulty := domain.DifficultyEasy
		howToFix := "Enable HTTPS on your website. Most web hosts offer free SSL " +
			"certificates through Let's Encrypt."
		if httpsPartial {
			title = "Fix Your SSL Certificate"
			difficulty = domain.DifficultyModerate
			howToFix = "Your SSL certificate may be expired or misconfigured. Contact " +
				"your web host to renew or fix it."
		}
		recs = append(recs, domain.Recommendation{
			ID:    "enable_https",
			Title: title,
			Description: "A secure connection (HTTPS) is a basic trust signal. AI systems " +
				"strongly prefer secure websites. Without it, your site looks risky.",
			Impact:            domain.ImpactHigh,
			Difficulty:        difficulty,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3 - httpsScore,
			HowToFix:          howToFix,
		})
	}

	// Security headers, one point each.
	headerPresence := make(map[string]bool, len(securityHeaderNames))
	var found, missing []string
	for _, name := range securityHeaderNames {
		_, present := in.Crawl.Headers[name]
		headerPresence[name] = present
		if present {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}
	foundList := strings.Join(found, ", ")
	if foundList == "" {
		foundList = "none"
	}
	checks = append(checks, domain.CheckResult{
		ID:       "security_headers",
		Label:    "Security Headers Present",
		Passed:   len(found) >= 2,
		Score:    len(found),
		MaxScore: 3,
		Details:  fmt.Sprintf("%d/3 security headers found: %s", len(found), foundList),
	})
	if len(found) < 3 {
		recs = append(recs, domain.Recommendation{
			ID:    "add_security_headers",
			Title: "Add Security Headers",
			Description: "Security headers protect your visitors and signal to AI that " +
				"your site is safe. You're missing: " + strings.Join(missing, ", "),
			Impact:            domain.ImpactMedium,
			Difficulty:        domain.DifficultyModerate,
			Pillar:            s.Pillar(),
			PointsRecoverable: 3 - len(found),
			HowToFix: "Add security headers to your web server configuration. Your hosting " +
				"provider may have a setting for this, or you can add them through a CDN " +
				"like Cloudflare.",
		})
	}

	// Field performance metrics.
	var lcpPtr, clsPtr, inpPtr *float64
	if in.Crux.Available {
		lcp, cls, inp := in.Crux.LCPMillis, in.Crux.CLS, in.Crux.INPMillis
		lcpPtr, clsPtr, inpPtr = &lcp, &cls, &inp

		lcpScore := 0
		switch {
		case lcp <= 2500:
			lcpScore = 3
		case lcp <= 4000:
			lcpScore = 1
		}
		lcpSec := lcp / 1000
		checks = append(checks, domain.CheckResult{
			ID:       "crux_lcp",
			Label:    "Page Load Speed (LCP)",
			Passed:   lcpScore >= 2,
			Score:    lcpScore,
			MaxScore: 3,
			Details:  fmt.Sprintf("Largest Contentful Paint: %.1fs (%s)", lcpSec, vitalVerdict(lcpScore, 3)),
		})
		if lcpScore < 3 {
			recs = append(recs, domain.Recommendation{
				ID:    "improve_lcp",
				Title: "Speed Up Your Page Load Time",
				Description: fmt.Sprintf("Your page takes %.1f seconds to show its main "+
					"content. Fast-loading sites are trusted more by AI and preferred in "+
					"search results.", lcpSec),
				Impact:            domain.ImpactHigh,
				Difficulty:        domain.DifficultyHard,
				Pillar:            s.Pillar(),
				PointsRecoverable: 3 - lcpScore,
				HowToFix: "Optimize images (compress them, use modern formats like WebP), " +
					"reduce the number of scripts loading on your page, and consider using " +
					"a CDN.",
			})
		}

		clsScore := 0
		switch {
		case cls <= 0.1:
			clsScore = 2
		case cls <= 0.25:
			clsScore = 1
		}
		checks = append(checks, domain.CheckResult{
			ID:       "crux_cls",
			Label:    "Visual Stability (CLS)",
			Passed:   clsScore >= 1,
			Score:    clsScore,
			MaxScore: 2,
			Details:  fmt.Sprintf("Cumulative Layout Shift: %.2f (%s)", cls, vitalVerdict(clsScore, 2)),
		})
		if clsScore < 2 {
			recs = append(recs, domain.Recommendation{
				ID:    "improve_cls",
				Title: "Reduce Layout Shifting",
				Description: "Your page content moves around as it loads, which makes it " +
					"harder for both visitors and AI to read your content reliably.",
				Impact:            domain.ImpactMedium,
				Difficulty:        domain.DifficultyHard,
				Pillar:            s.Pillar(),
				PointsRecoverable: 2 - clsScore,
				HowToFix: "Set explicit width and height on images and ads. Avoid " +
					"inserting content above existing content after the page loads.",
			})
		}

		inpScore := 0
		switch {
		case inp <= 200:
			inpScore = 2
		case inp <= 500:
			inpScore = 1
		}
		checks = append(checks, domain.CheckResult{
			ID:       "crux_inp",
			Label:    "Responsiveness (INP)",
			Passed:   inpScore >= 1,
			Score:    inpScore,
			MaxScore: 2,
			Details:  fmt.Sprintf("Interaction to Next Paint: %.0fms (%s)", inp, vitalVerdict(inpScore, 2)),
		})
	} else {
		// No field data for this origin. Neutral credit, never a penalty.
		checks = append(checks,
			neutralVitalCheck("crux_lcp", "Page Load Speed (LCP)", 2, 3),
			neutralVitalCheck("crux_cls", "Visual Stability (CLS)", 1, 2),
			neutralVitalCheck("crux_inp", "Responsiveness (INP)", 1, 2),
		)
	}

	// No mixed content.
	checks = append(checks, domain.CheckResult{
		ID:       "no_mixed_content",
		Label:    "No Mixed Content",
		Passed:   !in.Content.HasMixedContent,
		Score:    points(!in.Content.HasMixedContent, 1),
		MaxScore: 1,
		Details: pickDetails(!in.Content.HasMixedContent,
			"No mixed content detected",
			"Page loads insecure (HTTP) resources on a secure (HTTPS) page"),
	})

	// Privacy policy.
	hasPrivacy := hasPrivacyPolicy(in)
	checks = append(checks, domain.CheckResult{
		ID:       "has_privacy_policy",
		Label:    "Privacy Policy Present",
		Passed:   hasPrivacy,
		Score:    points(hasPrivacy, 1),
		MaxScore: 1,
		Details:  pickDetails(hasPrivacy, "Privacy policy link found", "No privacy policy link found"),
	})
	if !hasPrivacy {
		recs = append(recs, domain.Recommendation{
			ID:    "add_privacy_policy",
			Title: "Add a Privacy Policy",
			Description: "A privacy policy is expected by both visitors and AI. Not having " +
				"one can make your site look less professional and trustworthy.",
			Impact:            domain.ImpactLow,
			Difficulty:        domain.DifficultyEasy,
			Pillar:            s.Pillar(),
			PointsRecoverable: 1,
			HowToFix: "Create a privacy policy page and link to it from your footer. Free " +
				"privacy policy generators are available online.",
		})
	}

	signals := TrustSignals{
		HTTPSValid:       httpsValid,
		TLS:              in.Crawl.TLS,
		SecurityHeaders:  headerPresence,
		CruxHasData:      in.Crux.Available,
		CruxLCP:          lcpPtr,
		CruxCLS:          clsPtr,
		CruxINP:          inpPtr,
		HasMixedContent:  in.Content.HasMixedContent,
		HasPrivacyPolicy: hasPrivacy,
	}

	return newResult(s.Pillar(), signals, checks, recs)
}

// hasPrivacyPolicy looks for a privacy link among internal links, or the
// phrase in the page body.
func hasPrivacyPolicy(in Inputs) bool {
	for _, link := range in.Content.InternalLinks {
		lower := strings.ToLower(link)
		if strings.Contains(lower, "privacy") || strings.Contains(lower, "policy") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(in.Crawl.HTML), "privacy policy")
}

func neutralVitalCheck(id, label string, score, max int) domain.CheckResult {
	return domain.CheckResult{
		ID:       id,
		Label:    label,
		Passed:   true,
		Score:    score,
		MaxScore: max,
		Details:  "Not enough traffic data to measure (neutral score awarded)",
	}
}

func vitalVerdict(score, max int) string {
	switch {
	case score == max:
		return "Good"
	case score > 0:
		return "Needs Improvement"
	default:
		return "Poor"
	}
}
