package analyzer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/apps/server/internal/review/analyzer"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

// text returns a message's content whether it was sent as a plain string or
// as an array of text parts.
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(raw, &parts)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// fakeOpenAI answers /chat/completions with reply and records the last request.
func fakeOpenAI(t *testing.T, status int, reply string) (*httptest.Server, *chatRequest, *http.Header) {
	t.Helper()
	var got chatRequest
	var hdr http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		hdr = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   got.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &hdr
}

func newAnalyzer(t *testing.T, srv *httptest.Server, model string) *analyzer.OpenAI {
	t.Helper()
	a, err := analyzer.NewOpenAI(analyzer.Config{
		APIKey:     "sk-test",
		Model:      model,
		BaseURL:    srv.URL + "/v1",
		HTTPClient: srv.Client(),
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return a
}

func TestAnalyze_SendsSystemAndUserMessages(t *testing.T) {
	srv, got, hdr := fakeOpenAI(t, http.StatusOK, `{"Rating": 9}`)

	reply, err := newAnalyzer(t, srv, "").Analyze(context.Background(), review.SystemPrompt, "review this")

	require.NoError(t, err)
	assert.JSONEq(t, `{"Rating": 9}`, reply)
	assert.Equal(t, analyzer.DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, review.SystemPrompt, text(got.Messages[0].Content))
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "review this", text(got.Messages[1].Content))
	assert.Equal(t, "Bearer sk-test", hdr.Get("Authorization"))
}

func TestAnalyze_ConfiguredModel(t *testing.T) {
	srv, got, _ := fakeOpenAI(t, http.StatusOK, `{}`)

	_, err := newAnalyzer(t, srv, "gpt-4o").Analyze(context.Background(), "s", "p")

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestAnalyze_UpstreamError_IsAnalysisError(t *testing.T) {
	srv, _, _ := fakeOpenAI(t, http.StatusBadRequest, "")

	_, err := newAnalyzer(t, srv, "").Analyze(context.Background(), "s", "p")

	var target review.AnalysisError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "chat completion failed", target.Reason)
}
