package review_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/pkg/api"
)

// Compile-time interface compliance checks.
var (
	_ review.RepoFetcher = (*stubFetcher)(nil)
	_ review.Analyzer    = (*stubAnalyzer)(nil)
	_ review.ResultCache = (*memCache)(nil)
)

var discard = slog.New(slog.DiscardHandler)

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubFetcher struct {
	tree  []repofetch.Entry
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) ([]repofetch.Entry, error) {
	f.calls++
	return f.tree, f.err
}

type stubAnalyzer struct {
	reply  string
	err    error
	system string
	prompt string
	calls  int
}

func (a *stubAnalyzer) Analyze(_ context.Context, system, prompt string) (string, error) {
	a.calls++
	a.system, a.prompt = system, prompt
	return a.reply, a.err
}

type memCache struct {
	mu     sync.Mutex
	items  map[string]api.ReviewResult
	getErr error
	setErr error
}

func newMemCache() *memCache { return &memCache{items: map[string]api.ReviewResult{}} }

func (c *memCache) Get(_ context.Context, key string) (*api.ReviewResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *memCache) Set(_ context.Context, key string, r api.ReviewResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.items[key] = r
	return nil
}

const verdictJSON = `{"Found files":["main.go"],"Downsides/Comments":"none","Rating":8,"Conclusion":"hire"}`

func newRequest() api.ReviewRequest {
	return api.ReviewRequest{
		AssignmentDescription: "build a todo API",
		GithubRepoURL:         "https://github.com/octo/todo",
		CandidateLevel:        "Junior",
	}
}

// ─── Review ───────────────────────────────────────────────────────────────────

func TestReview_HappyPath(t *testing.T) {
	f := &stubFetcher{tree: []repofetch.Entry{repofetch.File("main.go", "package main")}}
	a := &stubAnalyzer{reply: verdictJSON}
	c := newMemCache()
	svc := review.NewService(f, a, c, review.Options{}, discard)

	res, err := svc.Review(context.Background(), newRequest())

	require.NoError(t, err)
	assert.Equal(t, api.LevelJunior, res.CandidateLevel)
	assert.Equal(t, "hire", res.Review["Conclusion"])
	assert.False(t, res.Cached)
	assert.Equal(t, review.SystemPrompt, a.system)
	assert.Contains(t, a.prompt, "File: main.go\nContent:\npackage main")
	assert.Contains(t, a.prompt, "for a junior developer")

	_, stored := c.items["https://github.com/octo/todo_junior"]
	assert.True(t, stored)
}

func TestReview_CacheHit_SkipsFetchAndAnalysis(t *testing.T) {
	f := &stubFetcher{}
	a := &stubAnalyzer{}
	c := newMemCache()
	c.items["https://github.com/octo/todo_junior"] = api.ReviewResult{
		GithubRepoURL:  "https://github.com/octo/todo",
		CandidateLevel: api.LevelJunior,
		Review:         api.Verdict{"Rating": 5.0},
	}
	svc := review.NewService(f, a, c, review.Options{}, discard)

	res, err := svc.Review(context.Background(), newRequest())

	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 5.0, res.Review["Rating"])
	assert.Zero(t, f.calls)
	assert.Zero(t, a.calls)
}

func TestReview_CacheErrors_DoNotFailRequest(t *testing.T) {
	f := &stubFetcher{tree: []repofetch.Entry{repofetch.File("a", "b")}}
	a := &stubAnalyzer{reply: verdictJSON}
	c := newMemCache()
	c.getErr = errors.New("connection refused")
	c.setErr = errors.New("connection refused")
	svc := review.NewService(f, a, c, review.Options{}, discard)

	res, err := svc.Review(context.Background(), newRequest())

	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, 1, f.calls)
}

func TestReview_NilCache(t *testing.T) {
	svc := review.NewService(&stubFetcher{}, &stubAnalyzer{reply: verdictJSON}, nil, review.Options{}, discard)

	_, err := svc.Review(context.Background(), newRequest())

	require.NoError(t, err)
}

func TestReview_InvalidLevel_NoFetch(t *testing.T) {
	f := &stubFetcher{}
	svc := review.NewService(f, &stubAnalyzer{}, nil, review.Options{}, discard)
	req := newRequest()
	req.CandidateLevel = "lead"

	_, err := svc.Review(context.Background(), req)

	var target review.InvalidCandidateLevelError
	require.ErrorAs(t, err, &target)
	assert.Zero(t, f.calls)
}

func TestReview_FetchError_KeepsKind(t *testing.T) {
	f := &stubFetcher{err: repofetch.NotFoundError{URL: "x"}}
	a := &stubAnalyzer{}
	svc := review.NewService(f, a, newMemCache(), review.Options{}, discard)

	_, err := svc.Review(context.Background(), newRequest())

	var target repofetch.NotFoundError
	require.ErrorAs(t, err, &target)
	assert.Zero(t, a.calls)
}

func TestReview_BadModelReply_NotCached(t *testing.T) {
	c := newMemCache()
	svc := review.NewService(&stubFetcher{}, &stubAnalyzer{reply: "great job!"}, c, review.Options{}, discard)

	_, err := svc.Review(context.Background(), newRequest())

	var target review.AnalysisError
	require.ErrorAs(t, err, &target)
	assert.Empty(t, c.items)
}

func TestReview_AnalyzerError_Propagates(t *testing.T) {
	boom := review.AnalysisError{Reason: "chat completion failed", Err: errors.New("502")}
	svc := review.NewService(&stubFetcher{}, &stubAnalyzer{err: boom}, nil, review.Options{}, discard)

	_, err := svc.Review(context.Background(), newRequest())

	assert.ErrorIs(t, err, boom)
}

func TestReview_MaxPromptChars_TruncatesTree(t *testing.T) {
	f := &stubFetcher{tree: []repofetch.Entry{repofetch.File("big.txt", string(make([]byte, 5000)))}}
	a := &stubAnalyzer{reply: verdictJSON}
	svc := review.NewService(f, a, nil, review.Options{MaxPromptChars: 100}, discard)

	_, err := svc.Review(context.Background(), newRequest())

	require.NoError(t, err)
	assert.Less(t, len(a.prompt), 1000)
	assert.Contains(t, a.prompt, "truncated")
}
