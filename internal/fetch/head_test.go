package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreyshath-a11y/aeo-app/internal/fetch"
	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

func newHeadChecker() *fetch.HeadChecker {
	return fetch.NewHeadChecker(5*time.Second, "test-agent/1.0", logger.NewNoOp())
}

func TestHeadChecker_Alive(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	checker := newHeadChecker()
	ctx := context.Background()

	assert.True(t, checker.Alive(ctx, server.URL+"/ok"))
	assert.True(t, checker.Alive(ctx, server.URL+"/moved"), "redirects that land somewhere alive count")
	assert.False(t, checker.Alive(ctx, server.URL+"/gone"))
	assert.False(t, checker.Alive(ctx, server.URL+"/boom"))
}

func TestHeadChecker_RetriesRejectedHEADWithGET(t *testing.T) {
	t.Parallel()

	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.True(t, newHeadChecker().Alive(context.Background(), server.URL))
	assert.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestHeadChecker_UnreachableHost(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	assert.False(t, newHeadChecker().Alive(context.Background(), target))
}
