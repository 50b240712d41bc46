package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(c Config) (*OpenAI, error) {
	if c.APIKey == "" && c.URL == nil {
		return nil, errors.New("openai requires an api key or a compatible base url")
	}
	if c.Model == "" {
		return nil, errors.New("no model set for openai")
	}

	config := openai.DefaultConfig(c.APIKey)
	config.HTTPClient = httpClient(c)
	if c.URL != nil {
		config.BaseURL = c.URL.String()
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  c.Model,
	}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return NoResponse, nil
	}

	return text, nil
}
