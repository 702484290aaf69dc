package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func robotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRobotsCheckerAllowed(t *testing.T) {
	t.Parallel()

	checker := NewRobotsChecker("siteingest-test", zap.NewNop())
	ctx := context.Background()

	t.Run("global disallow denies", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /\n")
		require.False(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("path disallow still allows", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private\n")
		require.True(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("disallow under other agent allows", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusOK, "User-agent: badbot\nDisallow: /\n")
		require.True(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("missing robots allows", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusNotFound, "not here")
		require.True(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("server error allows", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusInternalServerError, "boom")
		require.True(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("unreachable host allows", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusOK, "")
		srv.Close()
		require.True(t, checker.Allowed(ctx, srv.URL))
	})

	t.Run("accepts full page URL", func(t *testing.T) {
		t.Parallel()
		srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /\n")
		require.False(t, checker.Allowed(ctx, srv.URL+"/deep/page?x=1"))
	})
}
