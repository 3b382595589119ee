package review

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/pkg/api"
)

// SystemPrompt is sent as the system message of every review.
const SystemPrompt = "You are a code review assistant."

const (
	truncationMarker   = "\n[... repository truncated ...]\n"
	placeholderContent = "[content not available]"
)

// FormatTree renders a repository tree as prompt text. Each nesting level
// indents its header line by two more spaces.
func FormatTree(entries []repofetch.Entry) string {
	var b strings.Builder
	formatTree(&b, entries, 0)
	return b.String()
}

func formatTree(b *strings.Builder, entries []repofetch.Entry, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(b, "%sDirectory: %s\n", pad, e.Name)
			formatTree(b, e.Children, indent+2)
			continue
		}
		content := e.Content
		if e.Placeholder {
			content = placeholderContent
		}
		fmt.Fprintf(b, "%sFile: %s\nContent:\n%s\n\n", pad, e.Name, content)
	}
}

// Truncate cuts s to at most limit bytes on a rune boundary and appends a
// marker. A limit of 0 or less leaves s untouched.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + truncationMarker
}

// BuildPrompt returns the user message for one review.
func BuildPrompt(tree string, level api.CandidateLevel, description string) string {
	return "Here is a repository with the following files: " + tree + ". " +
		"Description: " + description + ". " +
		"Analyze the code for a " + string(level) + " developer, and provide feedback." +
		"Return the review result (text) in the following format: " +
		"Found files, Downsides/Comments, Rating (from 0 to 10), Conclusion. " +
		"It must be a JSON object. " +
		"Return data without special characters or formatting."
}

// ParseVerdict decodes the model's reply. Replies wrapped in a markdown code
// fence are accepted.
func ParseVerdict(raw string) (api.Verdict, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var v api.Verdict
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, AnalysisError{Reason: "model reply is not a JSON object", Err: err}
	}
	if v == nil {
		return nil, AnalysisError{Reason: "model reply is empty"}
	}
	return v, nil
}
