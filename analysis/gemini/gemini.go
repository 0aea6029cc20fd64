// Package gemini generates intake analyses with a Gemini model.
package gemini

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Generator asks a Gemini model for a JSON answer. It satisfies
// analysis.Generator.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "analysis.gemini.client")
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", errors.Wrap(err, "analysis.gemini.generate")
	}
	return resp.Text(), nil
}
