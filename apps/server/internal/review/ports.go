package review

import (
	"context"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/pkg/api"
)

// RepoFetcher materialises a repository's file tree.
// repofetch.Service is the production implementation.
type RepoFetcher interface {
	Fetch(ctx context.Context, repoURL string) ([]repofetch.Entry, error)
}

// Analyzer sends a prompt to a chat-completion model and returns its raw reply.
type Analyzer interface {
	Analyze(ctx context.Context, system, prompt string) (string, error)
}

// ResultCache stores finished reviews. Get reports a miss with ok=false and a
// nil error.
type ResultCache interface {
	Get(ctx context.Context, key string) (result *api.ReviewResult, ok bool, err error)
	Set(ctx context.Context, key string, result api.ReviewResult) error
}
