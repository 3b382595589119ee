package repofetch

import (
	"fmt"
	"net/url"
	"strings"
)

const githubHost = "github.com"

// ParseRepoURL validates a https://github.com/{owner}/{repo} URL and returns
// the repository it names. A single trailing slash and a ".git" suffix are
// tolerated.
func ParseRepoURL(raw string) (RepoReference, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RepoReference{}, InvalidRepoURLError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return RepoReference{}, InvalidRepoURLError{URL: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if !strings.EqualFold(u.Hostname(), githubHost) {
		return RepoReference{}, InvalidRepoURLError{URL: raw, Reason: fmt.Sprintf("unsupported host %q", u.Hostname())}
	}

	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return RepoReference{}, InvalidRepoURLError{URL: raw, Reason: fmt.Sprintf("path %q must be /{owner}/{repo}", u.Path)}
	}
	name := strings.TrimSuffix(segments[1], ".git")
	if name == "" {
		return RepoReference{}, InvalidRepoURLError{URL: raw, Reason: "empty repository name"}
	}
	return RepoReference{Owner: segments[0], Name: name}, nil
}
