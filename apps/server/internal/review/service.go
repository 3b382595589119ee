// Package review turns a submitted repository into a model-written verdict.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/pkg/api"
)

const instrName = "github.com/tilsley/assay"

// Options tune a Service.
type Options struct {
	// MaxPromptChars caps the formatted repository text sent to the model.
	// 0 disables the cap.
	MaxPromptChars int
}

// Service is the review use case: fetch, prompt, analyze, cache.
// It depends only on port interfaces.
type Service struct {
	fetcher  RepoFetcher
	analyzer Analyzer
	cache    ResultCache
	opts     Options
	log      *slog.Logger
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(fetcher RepoFetcher, analyzer Analyzer, cache ResultCache, opts Options, log *slog.Logger) *Service {
	return &Service{fetcher: fetcher, analyzer: analyzer, cache: cache, opts: opts, log: log}
}

// ParseLevel normalises a candidate level. Matching is case-insensitive.
func ParseLevel(s string) (api.CandidateLevel, error) {
	switch l := api.CandidateLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case api.LevelJunior, api.LevelMiddle, api.LevelSenior:
		return l, nil
	default:
		return "", InvalidCandidateLevelError{Level: s}
	}
}

// CacheKey returns the result cache key for a repository and level.
func CacheKey(repoURL string, level api.CandidateLevel) string {
	return repoURL + "_" + string(level)
}

// Review produces a verdict for req. A cached verdict for the same repository
// and level is returned without fetching. Cache failures are logged and never
// fail the review.
func (s *Service) Review(ctx context.Context, req api.ReviewRequest) (*api.ReviewResult, error) {
	level, err := ParseLevel(req.CandidateLevel)
	if err != nil {
		return nil, err
	}
	log := s.log.With("repo", req.GithubRepoURL, "level", level)
	key := CacheKey(req.GithubRepoURL, level)

	ctx, span := otel.Tracer(instrName).Start(ctx, "Review",
		trace.WithAttributes(
			attribute.String("repo.url", req.GithubRepoURL),
			attribute.String("candidate.level", string(level)),
		),
	)
	defer span.End()

	if cached := s.lookup(ctx, log, key); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	start := time.Now()
	tree, err := s.fetcher.Fetch(ctx, req.GithubRepoURL)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch %s: %w", req.GithubRepoURL, err)
	}
	fetched := time.Now()

	formatted := FormatTree(tree)
	if truncated := Truncate(formatted, s.opts.MaxPromptChars); len(truncated) != len(formatted) {
		log.Warn("repository text truncated", "chars", len(formatted), "limit", s.opts.MaxPromptChars)
		formatted = truncated
	}

	raw, err := s.analyzer.Analyze(ctx, SystemPrompt, BuildPrompt(formatted, level, req.AssignmentDescription))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	verdict, err := ParseVerdict(raw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	analyzed := time.Now()

	result := api.ReviewResult{
		GithubRepoURL:  req.GithubRepoURL,
		CandidateLevel: level,
		Review:         verdict,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}

	log.Info("review finished",
		"fetch_duration", fetched.Sub(start),
		"analysis_duration", analyzed.Sub(fetched),
		"total_duration", analyzed.Sub(start),
	)
	return &result, nil
}

func (s *Service) lookup(ctx context.Context, log *slog.Logger, key string) *api.ReviewResult {
	if s.cache == nil {
		return nil
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		return nil
	}
	if !ok || cached == nil {
		return nil
	}
	log.Info("review served from cache")
	cached.Cached = true
	return cached
}

// Compile-time check: *repofetch.Service implements RepoFetcher.
var _ RepoFetcher = (*repofetch.Service)(nil)
