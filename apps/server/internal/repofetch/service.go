// Package repofetch downloads the full file tree of a GitHub repository
// through the REST contents API.
//
// The tree is walked one directory level at a time: every item in a listing
// is fetched concurrently, the level is joined, and any single failure fails
// the whole fetch. Connect timeouts are the only failure that is retried.
package repofetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// Config controls a Service.
type Config struct {
	APIURL  string        // defaults to DefaultAPIURL
	Timeout time.Duration // overall budget for one Fetch; 0 disables it
	Walk    WalkOptions
}

// Service resolves a repository URL into its materialised tree.
type Service struct {
	client  Client
	walker  *Walker
	apiURL  string
	timeout time.Duration
	log     *slog.Logger

	duration metric.Float64Histogram
}

// NewService creates a Service that fetches through client.
func NewService(client Client, cfg Config, log *slog.Logger) *Service {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	duration, _ := otel.Meter(instrName).Float64Histogram("assay.repo.fetch.duration",
		metric.WithDescription("Wall-clock time to fetch and walk a repository"),
		metric.WithUnit("ms"))

	return &Service{
		client:   client,
		walker:   NewWalker(client, cfg.Walk, log),
		apiURL:   strings.TrimRight(apiURL, "/"),
		timeout:  cfg.Timeout,
		log:      log,
		duration: duration,
	}
}

// ContentsURL returns the root listing URL for ref.
func (s *Service) ContentsURL(ref RepoReference) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents", s.apiURL, url.PathEscape(ref.Owner), url.PathEscape(ref.Name))
}

// Fetch validates repoURL and returns the repository's tree. Errors are
// returned as produced so callers can classify them with errors.As.
func (s *Service) Fetch(ctx context.Context, repoURL string) ([]Entry, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer(instrName).Start(ctx, "FetchRepository",
		trace.WithAttributes(
			attribute.String("repo.owner", ref.Owner),
			attribute.String("repo.name", ref.Name),
		),
	)
	defer span.End()

	start := time.Now()
	body, err := s.client.Fetch(ctx, s.ContentsURL(ref))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var listing []Item
	if err := json.Unmarshal(body, &listing); err != nil {
		err = DecodeError{Name: ref.String(), Reason: "root listing is not a JSON array", Err: err}
		span.RecordError(err)
		return nil, err
	}

	entries, err := s.walker.Resolve(ctx, listing)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	s.duration.Record(ctx, float64(elapsed.Milliseconds()),
		metric.WithAttributes(attribute.String("repo", ref.String())))
	s.log.Info("repository contents fetched",
		"repo", ref.String(),
		"entries", Count(entries),
		"depth", Depth(entries),
		"duration", elapsed,
	)
	return entries, nil
}
