package scanner_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreyshath-a11y/aeo-app/internal/scanner"
)

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  errors.New("scan timeout: exceeded 55s"),
			want: "The scan took too long",
		},
		{
			name: "context deadline",
			err:  errors.New("context deadline exceeded"),
			want: "The scan took too long",
		},
		{
			name: "dns failure",
			err:  errors.New(`dial tcp: lookup nosuchsite.example: no such host`),
			want: "We couldn't find that website",
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 10.0.0.1:443: connect: connection refused"),
			want: "The website refused our connection",
		},
		{
			name: "connection reset",
			err:  errors.New("read tcp: connection reset by peer"),
			want: "The website refused our connection",
		},
		{
			name: "certificate",
			err:  errors.New("x509: certificate signed by unknown authority"),
			want: "security certificate issue",
		},
		{
			name: "tls handshake",
			err:  errors.New("tls: handshake failure"),
			want: "security certificate issue",
		},
		{
			name: "forbidden",
			err:  errors.New("website returned error 403. The page may not exist or may be blocking our scanner"),
			want: "blocking our scanner",
		},
		{
			name: "not found",
			err:  errors.New("website returned error 404. The page may not exist or may be blocking our scanner"),
			want: "That page doesn't exist",
		},
		{
			name: "server error",
			err:  errors.New("website returned error 503. The page may not exist or may be blocking our scanner"),
			want: "returned a server error",
		},
		{
			name: "uncategorized",
			err:  errors.New("something odd happened"),
			want: "Scan failed: something odd happened",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := scanner.CategorizeError(tt.err)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestCategorizeError_PriorityOrder(t *testing.T) {
	t.Parallel()

	// A timeout reaching a 503 page is still reported as a timeout.
	got := scanner.CategorizeError(errors.New("timeout while reading 503 error page"))
	assert.Contains(t, got, "The scan took too long")
}

func TestCategorizeError_TruncatesLongMessages(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 400)
	got := scanner.CategorizeError(errors.New(long))

	assert.True(t, strings.HasPrefix(got, "Scan failed: "))
	assert.Contains(t, got, "…")
	assert.LessOrEqual(t, len(got), len("Scan failed: ")+150+len("…"))
}

func TestCategorizeError_Nil(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scanner.CategorizeError(nil))
}
