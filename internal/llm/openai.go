package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAICompleter calls the OpenAI chat completion API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter builds a client for apiKey. baseURL overrides the API endpoint when set.
func NewOpenAICompleter(apiKey, model, baseURL string) (*OpenAICompleter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, seed Seed, utterance string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 3)
	if seed.Instruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: seed.Instruction})
	}
	if seed.Greeting != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: seed.Greeting})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: utterance})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.9,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", providerError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", providerError("openai", errors.New("no choices"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", providerError("openai", errors.New("empty content"))
	}
	return text, nil
}
