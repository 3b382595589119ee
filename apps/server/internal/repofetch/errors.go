package repofetch

import "fmt"

// InvalidRepoURLError is returned when the input is not a github.com/{owner}/{repo} URL.
type InvalidRepoURLError struct {
	URL    string
	Reason string
}

// Error implements the error interface.
func (e InvalidRepoURLError) Error() string {
	return fmt.Sprintf("invalid repository url %q: %s", e.URL, e.Reason)
}

// NotFoundError is returned when the contents API answers 404.
type NotFoundError struct {
	URL string
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("repository contents not found: %s", e.URL)
}

// ForbiddenError is returned when the contents API answers 403.
type ForbiddenError struct {
	URL  string
	Body string
}

// Error implements the error interface.
func (e ForbiddenError) Error() string {
	return fmt.Sprintf("access to %s forbidden: %s", e.URL, e.Body)
}

// RateLimitedError is returned when the contents API answers 429.
type RateLimitedError struct {
	URL  string
	Body string
}

// Error implements the error interface.
func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited fetching %s: %s", e.URL, e.Body)
}

// TimeoutError is returned once the connect-timeout retry budget is spent.
type TimeoutError struct {
	URL      string
	Attempts int
}

// Error implements the error interface.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("connect timeout fetching %s after %d attempts", e.URL, e.Attempts)
}

// UpstreamError is returned for any other non-200 answer.
type UpstreamError struct {
	URL    string
	Status int
	Body   string
}

// Error implements the error interface.
func (e UpstreamError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.Status, e.Body)
}

// DecodeError is returned when a response body cannot be turned into a tree
// node: malformed JSON, invalid base64, or content that is not UTF-8.
type DecodeError struct {
	Name   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e DecodeError) Error() string {
	msg := e.Reason
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "decode " + msg
}

// Unwrap returns the underlying cause, if any.
func (e DecodeError) Unwrap() error { return e.Err }

// LimitExceededError is returned when a walk goes past a configured depth or
// entry cap.
type LimitExceededError struct {
	Limit string // "depth" or "entries"
	Max   int
}

// Error implements the error interface.
func (e LimitExceededError) Error() string {
	return fmt.Sprintf("repository exceeds %s limit of %d", e.Limit, e.Max)
}
