package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	apperrors "readiness-workers/internal/common/errors"
)

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	cli *genai.Client
}

// NewGeminiClient creates a client. An empty apiKey lets the SDK fall
// back to GOOGLE_API_KEY / GEMINI_API_KEY.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{cli: cli}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.cli.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	if resp == nil {
		return "", apperrors.NewLLMRequestFailedError(fmt.Errorf("gemini returned no response"))
	}
	return resp.Text(), nil
}
