package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"bazaar/internal/domain"
	"bazaar/internal/i18n"
	applog "bazaar/internal/log"
)

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature, topP := float32(0.7), float32(0.8)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// DescribeTimeout bounds one generation call; there are no retries.
const DescribeTimeout = 20 * time.Second

// Describer writes marketing copy for the admin product form. It always
// returns displayable text: failures become a localized fallback message.
type Describer struct {
	Gen TextGenerator // nil when no API key is configured
}

func NewDescriber(gen TextGenerator) *Describer { return &Describer{Gen: gen} }

func (d *Describer) Describe(ctx context.Context, name, category string, loc domain.Locale) string {
	if d == nil || d.Gen == nil {
		return i18n.T(loc, i18n.DescribeNoKey)
	}
	ctx, cancel := context.WithTimeout(ctx, DescribeTimeout)
	defer cancel()

	text, err := d.Gen.Generate(ctx, i18n.T(loc, i18n.DescribePrompt, name, category))
	if err != nil {
		applog.Error(nil, "describe.generate", err, map[string]any{"name": name})
		return i18n.T(loc, i18n.DescribeFailed)
	}
	if strings.TrimSpace(text) == "" {
		return i18n.T(loc, i18n.DescribeEmpty)
	}
	return text
}
