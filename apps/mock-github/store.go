package main

import (
	"sort"
	"strings"
	"sync"
)

// store holds file content keyed by "owner/repo" then by path.
type store struct {
	mu    sync.RWMutex
	files map[string]map[string]string
	// withheld paths answer with encoding "none" and no content, the way
	// GitHub treats files over its inline size limit.
	withheld map[string]map[string]bool
}

func newStore() *store {
	return &store{
		files:    make(map[string]map[string]string),
		withheld: make(map[string]map[string]bool),
	}
}

func (s *store) put(repo, path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files[repo] == nil {
		s.files[repo] = make(map[string]string)
	}
	s.files[repo][path] = content
}

func (s *store) withhold(repo, path string) {
	s.put(repo, path, "")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.withheld[repo] == nil {
		s.withheld[repo] = make(map[string]bool)
	}
	s.withheld[repo][path] = true
}

func (s *store) hasRepo(repo string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[repo]
	return ok
}

func (s *store) repoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// dirEntry is one child of a directory: its name and whether it is a directory.
type dirEntry struct {
	name  string
	path  string
	isDir bool
}

// listDir returns the immediate children of dirPath, sorted by name. ok is
// false when no file lives under dirPath.
func (s *store) listDir(repo, dirPath string) (entries []dirEntry, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}
	seen := map[string]bool{}
	for filePath := range s.files[repo] {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		rest := filePath[len(prefix):]
		name, _, nested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, dirEntry{name: name, path: prefix + name, isDir: nested})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, len(entries) > 0
}

// file returns the content at path. withheld reports a file served without
// content.
func (s *store) file(repo, path string) (content string, withheld, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok = s.files[repo][path]
	return content, s.withheld[repo][path], ok
}
