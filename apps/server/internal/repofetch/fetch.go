package repofetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	gogithub "github.com/google/go-github/v75/github"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"
)

const (
	instrName = "github.com/tilsley/assay"

	mediaType  = "application/vnd.github+json"
	apiVersion = "2022-11-28"

	// ConnectRetries is how many times a request is repeated after a connect
	// timeout before giving up.
	ConnectRetries = 10
)

// Client fetches one JSON document from the contents API.
type Client interface {
	Fetch(ctx context.Context, url string) (json.RawMessage, error)
}

// Compile-time check: *Fetcher implements Client.
var _ Client = (*Fetcher)(nil)

// Fetcher issues GET requests against the GitHub contents API and classifies
// the answers. Requests are built by go-github and sent on its http.Client so
// they inherit the transport configured in platform/github.
type Fetcher struct {
	gh     *gogithub.Client
	tokens oauth2.TokenSource
	log    *slog.Logger

	requests metric.Int64Counter
	retries  metric.Int64Counter
}

// NewFetcher creates a Fetcher. tokens supplies the bearer credential; pass
// nil to send unauthenticated requests.
func NewFetcher(gh *gogithub.Client, tokens oauth2.TokenSource, log *slog.Logger) *Fetcher {
	m := otel.Meter(instrName)
	requests, _ := m.Int64Counter("assay.github.requests",
		metric.WithDescription("Contents API requests by response class"))
	retries, _ := m.Int64Counter("assay.github.retries",
		metric.WithDescription("Contents API requests repeated after a connect timeout"))

	return &Fetcher{
		gh:       gh,
		tokens:   tokens,
		log:      log,
		requests: requests,
		retries:  retries,
	}
}

// Fetch returns the JSON body of url. Connect timeouts are retried up to
// ConnectRetries times with no delay; every other failure is returned at once.
func (f *Fetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	f.log.Debug("fetching contents", "url", url)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil || !IsConnectTimeout(err) {
			return nil, err
		}
		if attempt > ConnectRetries {
			f.log.Warn("connect timeout, giving up", "url", url, "attempts", attempt)
			return nil, TimeoutError{URL: url, Attempts: attempt}
		}
		f.retries.Add(ctx, 1)
		f.log.Info("connect timeout, retrying", "url", url, "attempt", attempt)
	}
}

func (f *Fetcher) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := f.gh.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if f.tokens != nil {
		tok, err := f.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("github token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := f.gh.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // non-actionable after reading

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	f.requests.Add(ctx, 1, metric.WithAttributes(attribute.Int("http.status_code", resp.StatusCode)))

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		f.log.Info("contents not found", "url", url)
		return nil, NotFoundError{URL: url}
	case http.StatusForbidden:
		f.log.Info("contents forbidden", "url", url, "body", string(body))
		return nil, ForbiddenError{URL: url, Body: string(body)}
	case http.StatusTooManyRequests:
		f.log.Info("contents rate limited", "url", url, "body", string(body))
		return nil, RateLimitedError{URL: url, Body: string(body)}
	default:
		return nil, UpstreamError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}
}

// IsConnectTimeout reports whether err is a timeout while establishing the
// transport connection. DNS failures and timeouts after the connection was
// made do not count.
func IsConnectTimeout(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return opErr.Op == "dial" && opErr.Timeout()
}
