// Package github builds the go-github client and credential used to read the
// contents API. Pass an empty base URL for the real GitHub API, or a custom
// URL (e.g. "http://localhost:9090") for apps/mock-github.
package github

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// DefaultConnectTimeout bounds TCP connection setup when none is configured.
const DefaultConnectTimeout = 10 * time.Second

// NewClient creates a *github.Client whose transport gives up on connection
// setup after connectTimeout. Timeouts while dialing surface as *net.OpError
// with Op "dial", which repofetch retries.
func NewClient(baseURL string, connectTimeout time.Duration) *gogithub.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	c := gogithub.NewClient(&http.Client{Transport: tr})
	applyBaseURL(c, baseURL)
	return c
}

// TokenSource returns a static bearer credential, or nil when token is empty.
func TokenSource(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func applyBaseURL(c *gogithub.Client, baseURL string) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" || baseURL == defaultAPIURL {
		return
	}
	u, err := url.Parse(baseURL + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}
