package main

// Special repositories that answer every request with a fixed status, for
// exercising the server's error mapping locally.
const (
	forbiddenRepo   = "acme/private-assignment"
	rateLimitedRepo = "acme/rate-limited"
)

// seedRepos populates the store with sample assignment submissions.
// Called during init before the server accepts requests.
func seedRepos(s *store) {
	seedTodoAPI(s)
	seedWordCount(s)
	s.put("acme/empty-submission", ".gitkeep", "")
}

func seedTodoAPI(s *store) {
	const repo = "acme/todo-api"
	s.put(repo, "README.md", "# Todo API\n\nA small REST service for managing todo items.\n")
	s.put(repo, "go.mod", "module github.com/acme/todo-api\n\ngo 1.25\n")
	s.put(repo, "cmd/server/main.go", `package main

import (
	"log"
	"net/http"

	"github.com/acme/todo-api/internal/todo"
)

func main() {
	store := todo.NewStore()
	http.HandleFunc("/todos", todo.Handler(store))
	log.Fatal(http.ListenAndServe(":8080", nil))
}
`)
	s.put(repo, "internal/todo/store.go", `package todo

import "sync"

type Item struct {
	ID    int    `+"`json:\"id\"`"+`
	Title string `+"`json:\"title\"`"+`
	Done  bool   `+"`json:\"done\"`"+`
}

type Store struct {
	mu    sync.Mutex
	items []Item
}

func NewStore() *Store { return &Store{} }

func (s *Store) Add(title string) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := Item{ID: len(s.items) + 1, Title: title}
	s.items = append(s.items, it)
	return it
}

func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}
`)
	s.put(repo, "internal/todo/handler.go", `package todo

import (
	"encoding/json"
	"net/http"
)

func Handler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(s.List())
		case http.MethodPost:
			var body struct{ Title string }
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(s.Add(body.Title))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}
`)
	s.withhold(repo, "docs/architecture.png")
}

func seedWordCount(s *store) {
	const repo = "acme/word-count"
	s.put(repo, "README.md", "# word-count\n\nCounts words read from stdin.\n")
	s.put(repo, "wc.py", `import sys
from collections import Counter


def main():
    counts = Counter(sys.stdin.read().split())
    for word, n in counts.most_common():
        print(f"{n}\t{word}")


if __name__ == "__main__":
    main()
`)
	s.put(repo, "tests/test_wc.py", `def test_placeholder():
    assert True
`)
}
