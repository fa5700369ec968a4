package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/ZanzyTHEbar/questscale"
)

const defaultOpenAIBase = "https://api.openai.com"

// openaiBackend talks to an OpenAI-compatible chat completions endpoint.
type openaiBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func newOpenAIBackend(cfg questscale.GatewayConfig) *openaiBackend {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultOpenAIBase
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openaiBackend{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (b *openaiBackend) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, _ := sjson.Set("{}", "model", b.model)
	body, _ = sjson.Set(body, "temperature", temperature)
	body, _ = sjson.Set(body, "messages.0.role", "system")
	body, _ = sjson.Set(body, "messages.0.content", system)
	body, _ = sjson.Set(body, "messages.1.role", "user")
	body, _ = sjson.Set(body, "messages.1.content", user)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/v1/chat/completions", strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return "", fmt.Errorf("openai status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
