package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Gemini is a Summarizer backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("insight: gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("insight: gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.3)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("insight: generate: %w", err)
	}
	return extractTextFromResponse(resp)
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("insight: no candidates in response")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("insight: no content in response")
	}
	var parts []string
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			parts = append(parts, string(t))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("insight: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// Unavailable is used when no API key is configured; every call fails and
// callers fall back to their error message.
type Unavailable struct{}

func (Unavailable) Summarize(context.Context, string) (string, error) {
	return "", errors.New("insight: summarizer not configured")
}
