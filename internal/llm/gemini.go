package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiCompleter implements Completer using Google's Gemini API.
type GeminiCompleter struct {
	client  *genai.Client
	modelID string
}

// NewGeminiCompleter creates a Gemini client. Call Close when done.
func NewGeminiCompleter(ctx context.Context, apiKey, modelID string) (*GeminiCompleter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}

	return &GeminiCompleter{
		client:  client,
		modelID: modelID,
	}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, seed Seed, utterance string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	configureModel(model)

	cs := model.StartChat()
	cs.History = seedHistory(seed)

	resp, err := cs.SendMessage(ctx, genai.Text(utterance))
	if err != nil {
		return "", providerError("gemini", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return "", providerError("gemini", err)
	}
	return text, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiCompleter) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func configureModel(model *genai.GenerativeModel) {
	model.SetTemperature(0.9)
	model.SetTopK(1)
	model.SetTopP(1)
	model.SetMaxOutputTokens(1000)
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockMediumAndAbove,
		},
	}
}

func seedHistory(seed Seed) []*genai.Content {
	var history []*genai.Content
	if strings.TrimSpace(seed.Instruction) != "" {
		history = append(history, &genai.Content{
			Role:  "user",
			Parts: []genai.Part{genai.Text(seed.Instruction)},
		})
	}
	if strings.TrimSpace(seed.Greeting) != "" {
		history = append(history, &genai.Content{
			Role:  "model",
			Parts: []genai.Part{genai.Text(seed.Greeting)},
		})
	}
	return history
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("empty content")
	}

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(responseText.String())
	if text == "" {
		return "", errors.New("empty content")
	}
	return text, nil
}
