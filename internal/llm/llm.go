// Package llm is the boundary to the text-generation service. Callers
// send one prompt and get back free-form text; interpreting that text is
// the job of the assessment package.
package llm

import (
	"context"
	"fmt"
	"time"

	"readiness-workers/internal/common/config"
	httpclient "readiness-workers/internal/common/http"
)

// Request is a single user-role prompt with an output budget.
type Request struct {
	Model     string
	Prompt    string
	MaxTokens int
}

// Generator returns the completion text for a prompt. An empty string with
// a nil error means the service answered with no content.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New builds the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, httpclient.NewClient(timeout)), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
