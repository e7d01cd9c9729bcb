package scanner

import (
	"regexp"
	"strings"
)

// errMsgMaxLen caps how much of an uncategorized error surfaces to users.
const errMsgMaxLen = 150

var serverErrorRe = regexp.MustCompile(`\b5\d\d\b`)

// CategorizeError converts an internal failure into a message a site owner
// can act on. Category checks run in priority order; the first match wins.
func CategorizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "abort"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"):
		return "The scan took too long. The website may be slow to respond or blocking " +
			"our scanner. Try again in a minute."

	case strings.Contains(lower, "no such host"),
		strings.Contains(lower, "dns"),
		strings.Contains(lower, "enotfound"):
		return "We couldn't find that website. Please double-check the URL and make sure " +
			"the site is live."

	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"):
		return "The website refused our connection. It may be temporarily down or " +
			"blocking automated requests."

	case strings.Contains(lower, "certificate"),
		strings.Contains(lower, "ssl"),
		strings.Contains(lower, "tls"):
		return "There was a security certificate issue with this website. The scan could " +
			"not complete safely."

	case strings.Contains(lower, "403"),
		strings.Contains(lower, "blocked"):
		return "This website is blocking our scanner. Some sites have strict security " +
			"rules that prevent automated scans."

	case strings.Contains(lower, "404"),
		strings.Contains(lower, "not found"):
		return "That page doesn't exist. Check the URL and try again."

	case serverErrorRe.MatchString(lower) && strings.Contains(lower, "error"):
		return "The website returned a server error. It may be experiencing issues. Try " +
			"again later."
	}

	if len(msg) > errMsgMaxLen {
		msg = msg[:errMsgMaxLen] + "…"
	}
	return "Scan failed: " + msg
}
