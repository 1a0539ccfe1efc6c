// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"ai-home-decorator/internal/domain/ports/adapter"
)

var _ adapter.ImageGenerator = (*GeminiImageAdapter)(nil)

// GeminiImageAdapter produces the redesigned room image with the
// official Gemini SDK. The ledger does not care what happens in here;
// the generation use case has already paid for the call and refunds it
// on error.
type GeminiImageAdapter struct {
	client *genai.Client
	model  string
}

func NewGeminiImageAdapter(ctx context.Context, apiKey, baseURL, model string) (*GeminiImageAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiImageAdapter{client: c, model: model}, nil
}

// Redesign sends the room photo plus the style prompt and returns the
// first generated image. A response with no image part is an error, not
// an empty result: the caller refunds the spent credits on it.
func (g *GeminiImageAdapter) Redesign(ctx context.Context, prompt string, roomImage []byte) ([]byte, error) {
	if len(roomImage) == 0 {
		return nil, errors.New("gemini: empty room image")
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: roomImage}},
			{Text: prompt},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, err
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("gemini: response carried no image")
}
