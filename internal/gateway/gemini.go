package gateway

import (
	"context"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ZanzyTHEbar/questscale"
)

// geminiBackend talks to the Gemini API through the official client.
type geminiBackend struct {
	client *genai.Client
	model  string
}

func newGeminiBackend(ctx context.Context, cfg questscale.GatewayConfig) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, questscale.NewConfigurationError("failed to create gemini client", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &geminiBackend{client: client, model: model}, nil
}

func (b *geminiBackend) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	model := b.client.GenerativeModel(b.model)
	model.SetTemperature(float32(temperature))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", err
	}
	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini response has no text candidate")
	}
	return text, nil
}

func (b *geminiBackend) Close() error {
	return b.client.Close()
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
