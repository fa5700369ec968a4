package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultSearchResults = 5
	maxSearchResults     = 10
	tavilyEndpoint       = "https://api.tavily.com/search"
)

// TavilyClient calls the Tavily search API.
type TavilyClient struct {
	apiKey   string
	depth    string
	endpoint string
	client   *http.Client
}

// NewTavilyClient constructs a Tavily search client with basic depth.
func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		apiKey:   apiKey,
		depth:    "basic",
		endpoint: tavilyEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchResult is one hit from the search API.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Search posts a query to Tavily and returns up to maxResults hits.
func (t *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, fmt.Errorf("tavily: API key is missing")
	}

	body := map[string]interface{}{
		"query":        query,
		"api_key":      t.apiKey,
		"search_depth": t.depth,
		"max_results":  maxResults,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	if len(response.Results) > maxResults {
		response.Results = response.Results[:maxResults]
	}
	return response.Results, nil
}

// webSearch wraps the Tavily client behind the quota. Quota exhaustion and
// transport failures both come back as error payloads in the result map so
// the session keeps moving.
func webSearch(client *TavilyClient, quota *Quota) func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	return func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
		note, err := quota.Check()
		if err != nil {
			// Budget spent: report without touching the network.
			return map[string]interface{}{"error": err.Error()}, nil
		}

		query, _ := input["query"].(string)
		maxResults := clampResults(input["max_results"])

		results, err := client.Search(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("search failed: %v", err)
		}
		quota.MarkUsed()

		items := make([]interface{}, 0, len(results))
		for _, r := range results {
			items = append(items, map[string]interface{}{
				"title":   r.Title,
				"url":     r.URL,
				"content": r.Content,
			})
		}

		out := map[string]interface{}{
			"query":   query,
			"results": items,
		}
		if note != "" {
			out["_search_limit_info"] = note
		}
		return out, nil
	}
}

// clampResults normalizes the optional max_results argument. JSON numbers
// arrive as float64.
func clampResults(v interface{}) int {
	n := defaultSearchResults
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	}
	if n < 1 {
		n = 1
	}
	if n > maxSearchResults {
		n = maxSearchResults
	}
	return n
}
