package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini calls a Gemini model through the genai SDK and asks for a JSON
// response.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini classifier using the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{client: client, model: model, temperature: 0.1}, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// Classify sends the prompt as system instruction and the chunk as a JSON
// array of names.
func (g *Gemini) Classify(ctx context.Context, prompt string, chunk []string) (string, error) {
	input, err := chunkInput(chunk)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(input), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// chunkInput renders the chunk the way the prompt describes it.
func chunkInput(chunk []string) (string, error) {
	b, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("marshal chunk: %w", err)
	}
	return "Tag names:\n" + string(b), nil
}

func ptr[T any](v T) *T { return &v }
