// Command mock-github serves a GitHub contents API stand-in seeded with
// sample assignment repositories. Point apps/server at it with
// GITHUB_API_URL=http://localhost:9090.
package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/assay/pkg/logging"
)

// contentItem is one element of a directory listing, or the single-file body,
// in the GitHub contents API shape.
type contentItem struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	URL      string  `json:"url"`
	Content  *string `json:"content,omitempty"`
	Encoding string  `json:"encoding,omitempty"`
}

func main() {
	log := logging.New()
	s := newStore()

	seedRepos(s)
	log.Info("seeded repos", "repos", s.repoCount())

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}
	publicURL := os.Getenv("PUBLIC_URL")

	r := gin.New()
	r.Use(gin.Recovery())
	registerRoutes(r, s, log, publicURL)

	log.Info("mock-github starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// registerRoutes mounts the contents API. publicURL is the base written into
// each item's url field; empty derives it from the request Host.
func registerRoutes(r *gin.Engine, s *store, log *slog.Logger, publicURL string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	contents := func(c *gin.Context) {
		rest := strings.Trim(c.Param("rest"), "/")
		if rest != "contents" && !strings.HasPrefix(rest, "contents/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		key := c.Param("owner") + "/" + c.Param("repo")
		path := strings.Trim(strings.TrimPrefix(rest, "contents"), "/")
		base := baseURL(c, publicURL)

		switch key {
		case forbiddenRepo:
			c.JSON(http.StatusForbidden, gin.H{"message": "Resource not accessible by personal access token"})
			return
		case rateLimitedRepo:
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "API rate limit exceeded"})
			return
		}
		if !s.hasRepo(key) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}

		if content, withheld, ok := s.file(key, path); ok {
			item := contentItem{
				Name: lastSegment(path),
				Path: path,
				Type: "file",
				URL:  itemURL(base, key, path),
			}
			if withheld {
				item.Encoding = "none"
			} else {
				encoded := base64.StdEncoding.EncodeToString([]byte(content))
				item.Content = &encoded
				item.Encoding = "base64"
			}
			c.JSON(http.StatusOK, item)
			return
		}

		entries, ok := s.listDir(key, path)
		if !ok {
			log.Info("contents not found", "repo", key, "path", path)
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		listing := make([]contentItem, 0, len(entries))
		for _, e := range entries {
			typ := "file"
			if e.isDir {
				typ = "dir"
			}
			listing = append(listing, contentItem{
				Name: e.name,
				Path: e.path,
				Type: typ,
				URL:  itemURL(base, key, e.path),
			})
		}
		c.JSON(http.StatusOK, listing)
	}

	// One catch-all serves both /contents and /contents/{path}.
	r.GET("/repos/:owner/:repo/*rest", contents)
}

func baseURL(c *gin.Context, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func itemURL(base, repo, path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", base, repo, path)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
