package repofetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MissingContentPolicy decides what happens to a file whose metadata has no
// content field.
type MissingContentPolicy int

const (
	// EmitPlaceholder keeps the file in the tree with empty content and
	// Placeholder set.
	EmitPlaceholder MissingContentPolicy = iota
	// FailOnMissing fails the walk with a DecodeError.
	FailOnMissing
)

// WalkOptions bound a tree walk. Zero values mean unbounded.
type WalkOptions struct {
	MissingContent MissingContentPolicy
	MaxDepth       int // listings nested deeper than this fail the walk
	MaxEntries     int // total entries across the whole tree
	Concurrency    int // in-flight fetches per directory level
}

// Walker expands a contents API listing into a full tree. Each directory
// level fans out one fetch per item and joins them before returning; the
// first failure cancels the rest of that level.
type Walker struct {
	client Client
	opts   WalkOptions
	log    *slog.Logger
}

// NewWalker creates a Walker that fetches through client.
func NewWalker(client Client, opts WalkOptions, log *slog.Logger) *Walker {
	return &Walker{client: client, opts: opts, log: log}
}

// walk holds the counters shared by one Resolve call.
type walk struct {
	entries atomic.Int64
}

// Resolve fetches every file and directory in listing, recursively, and
// returns them in listing order.
func (w *Walker) Resolve(ctx context.Context, listing []Item) ([]Entry, error) {
	return w.resolve(ctx, &walk{}, listing, 1)
}

func (w *Walker) resolve(ctx context.Context, st *walk, listing []Item, depth int) ([]Entry, error) {
	if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
		return nil, LimitExceededError{Limit: "depth", Max: w.opts.MaxDepth}
	}
	if n := st.entries.Add(int64(len(listing))); w.opts.MaxEntries > 0 && n > int64(w.opts.MaxEntries) {
		return nil, LimitExceededError{Limit: "entries", Max: w.opts.MaxEntries}
	}

	results := make([]Entry, len(listing))
	keep := make([]bool, len(listing))

	g, gctx := errgroup.WithContext(ctx)
	if w.opts.Concurrency > 0 {
		g.SetLimit(w.opts.Concurrency)
	}
	for i, item := range listing {
		switch item.Type {
		case TypeFile:
			g.Go(func() error {
				e, err := w.file(gctx, item)
				if err != nil {
					return err
				}
				results[i] = e
				return nil
			})
		case TypeDir:
			g.Go(func() error {
				e, err := w.dir(gctx, st, item, depth)
				if err != nil {
					return err
				}
				results[i] = e
				return nil
			})
		default:
			// symlink and submodule entries have no tree content of their own.
			w.log.Debug("skipping listing item", "name", item.Name, "type", item.Type)
			continue
		}
		keep[i] = true
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(listing))
	for i, e := range results {
		if keep[i] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (w *Walker) file(ctx context.Context, item Item) (Entry, error) {
	if item.URL == "" {
		return w.missingContent(item.Name)
	}
	body, err := w.client.Fetch(ctx, item.URL)
	if err != nil {
		return Entry{}, err
	}

	// A listing URL that points at a directory answers with an array.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		return w.missingContent(item.Name)
	}
	var meta fileMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return Entry{}, DecodeError{Name: item.Name, Reason: "malformed file metadata", Err: err}
	}
	// Files over the API's inline limit come back with encoding "none".
	if meta.Content == nil || meta.Encoding == "none" {
		return w.missingContent(item.Name)
	}

	content, err := Decode(*meta.Content)
	if err != nil {
		var de DecodeError
		if errors.As(err, &de) {
			de.Name = item.Name
			return Entry{}, de
		}
		return Entry{}, err
	}
	return File(item.Name, content), nil
}

func (w *Walker) dir(ctx context.Context, st *walk, item Item, depth int) (Entry, error) {
	if item.URL == "" {
		return Dir(item.Name, nil), nil
	}
	body, err := w.client.Fetch(ctx, item.URL)
	if err != nil {
		return Entry{}, err
	}
	var listing []Item
	if err := json.Unmarshal(body, &listing); err != nil {
		return Entry{}, DecodeError{Name: item.Name, Reason: "directory listing is not a JSON array", Err: err}
	}
	children, err := w.resolve(ctx, st, listing, depth+1)
	if err != nil {
		return Entry{}, err
	}
	return Dir(item.Name, children), nil
}

func (w *Walker) missingContent(name string) (Entry, error) {
	if w.opts.MissingContent == FailOnMissing {
		return Entry{}, DecodeError{Name: name, Reason: "file metadata has no content"}
	}
	w.log.Warn("file has no content, emitting placeholder", "name", name)
	return Entry{Name: name, Type: TypeFile, Placeholder: true}, nil
}
