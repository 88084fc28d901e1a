package messaging

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GeminiConfig leaves the model unset
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig holds configuration for the Gemini text generator
type GeminiConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint
	BaseURL string

	HTTPClient *http.Client
}

// gemini implements TextGenerator with the Gemini API
type gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backed text generator
func NewGemini(ctx context.Context, cfg *GeminiConfig) (*gemini, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &gemini{
		client: client,
		model:  model,
	}, nil
}

// Generate sends the prompt as a single user turn
func (g *gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	return resp.Text(), nil
}
