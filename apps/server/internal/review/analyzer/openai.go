// Package analyzer sends review prompts to an OpenAI-compatible chat model.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilsley/assay/apps/server/internal/review"
)

const (
	instrName = "github.com/tilsley/assay"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4-turbo"
)

// Compile-time check: *OpenAI implements review.Analyzer.
var _ review.Analyzer = (*OpenAI)(nil)

// Config holds the chat-completion client settings.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string       // empty uses the public OpenAI endpoint
	HTTPClient *http.Client // nil uses http.DefaultClient
}

// OpenAI implements review.Analyzer on langchaingo's OpenAI client.
type OpenAI struct {
	llm   llms.Model
	model string
	log   *slog.Logger
}

// NewOpenAI creates an OpenAI analyzer.
func NewOpenAI(cfg Config, log *slog.Logger) (*OpenAI, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAI{llm: llm, model: model, log: log}, nil
}

// Analyze sends system and prompt as a two-message chat and returns the first
// choice's text.
func (o *OpenAI) Analyze(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := otel.Tracer(instrName).Start(ctx, "AnalyzeCode",
		trace.WithAttributes(
			attribute.String("llm.model", o.model),
			attribute.Int("llm.prompt_chars", len(prompt)),
		),
	)
	defer span.End()

	o.log.Info("sending review prompt", "model", o.model, "prompt_chars", len(prompt))
	start := time.Now()
	resp, err := o.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		span.RecordError(err)
		return "", review.AnalysisError{Reason: "chat completion failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", review.AnalysisError{Reason: "chat completion returned no choices"}
	}
	o.log.Info("review completion received", "model", o.model, "duration", time.Since(start))
	return resp.Choices[0].Content, nil
}
