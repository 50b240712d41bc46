package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, c Config) (*Gemini, error) {
	if c.APIKey == "" {
		return nil, errors.New("gemini requires an api key")
	}

	model := c.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     c.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient(c),
	}
	if c.URL != nil {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.URL.String()}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return NoResponse, nil
	}

	return text, nil
}
