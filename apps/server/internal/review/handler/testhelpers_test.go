package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/assay/apps/server/internal/platform/validation"
	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/apps/server/internal/review/handler"
	"github.com/tilsley/assay/pkg/api"
	"github.com/tilsley/assay/schemas"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.DiscardHandler)

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubFetcher struct {
	fetchFn func(ctx context.Context, url string) ([]repofetch.Entry, error)
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]repofetch.Entry, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, url)
	}
	return []repofetch.Entry{repofetch.File("main.go", "package main")}, nil
}

type stubAnalyzer struct {
	reply string
	err   error
}

func (a *stubAnalyzer) Analyze(context.Context, string, string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.reply == "" {
		return `{"Rating": 7, "Conclusion": "solid"}`, nil
	}
	return a.reply, nil
}

// ─── Test server builder ──────────────────────────────────────────────────────

type testServer struct {
	router   *gin.Engine
	fetcher  *stubFetcher
	analyzer *stubAnalyzer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{fetcher: &stubFetcher{}, analyzer: &stubAnalyzer{}}
	r := gin.New()
	r.Use(handler.RequestID())
	handler.RegisterRoutes(r, ts.service(), discard)
	ts.router = r
	return ts
}

func newTestServerWithValidation(t *testing.T) *testServer {
	t.Helper()
	ts := newTestServer(t)
	mw, err := validation.New(schemas.OpenAPISpec)
	require.NoError(t, err)
	r := gin.New()
	r.Use(handler.RequestID(), mw)
	handler.RegisterRoutes(r, ts.service(), discard)
	ts.router = r
	return ts
}

func (ts *testServer) service() *review.Service {
	return review.NewService(ts.fetcher, ts.analyzer, nil, review.Options{}, discard)
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func validRequest() api.ReviewRequest {
	return api.ReviewRequest{
		AssignmentDescription: "build a todo API",
		GithubRepoURL:         "https://github.com/octo/todo",
		CandidateLevel:        "middle",
	}
}
