package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/questscale/internal/cache"
)

const yahooQuoteEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"

// QuoteClient fetches quote snapshots from the Yahoo Finance quote API.
type QuoteClient struct {
	endpoint string
	client   *http.Client
	cache    *cache.InMemoryCache
}

// NewQuoteClient constructs a quote client with a TTL cache in front, so
// repeated lookups of the same ticker within a session hit the network once.
func NewQuoteClient(ttl time.Duration) *QuoteClient {
	return &QuoteClient{
		endpoint: yahooQuoteEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		cache:    cache.NewInMemoryCache(ttl),
	}
}

// Quote returns the snapshot for one ticker as a flat field map. Fields the
// exchange does not report come back as "N/A" rather than being omitted.
func (q *QuoteClient) Quote(ctx context.Context, ticker string) (map[string]interface{}, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if key == "" {
		return nil, fmt.Errorf("ticker must not be empty")
	}

	if cached, err := q.cache.Get(ctx, key); err == nil {
		if snapshot, ok := cached.(map[string]interface{}); ok {
			return snapshot, nil
		}
	}

	raw, err := q.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	snapshot := map[string]interface{}{
		"ticker":         key,
		"name":           pick(raw, "longName", "shortName"),
		"current_price":  pick(raw, "regularMarketPrice"),
		"currency":       pick(raw, "currency"),
		"market_cap":     pick(raw, "marketCap"),
		"pe_ratio":       pick(raw, "trailingPE"),
		"forward_pe":     pick(raw, "forwardPE"),
		"dividend_yield": pick(raw, "trailingAnnualDividendYield"),
		"52_week_high":   pick(raw, "fiftyTwoWeekHigh"),
		"52_week_low":    pick(raw, "fiftyTwoWeekLow"),
		"50_day_avg":     pick(raw, "fiftyDayAverage"),
		"200_day_avg":    pick(raw, "twoHundredDayAverage"),
		"volume":         pick(raw, "regularMarketVolume"),
		"avg_volume":     pick(raw, "averageDailyVolume3Month"),
		"exchange":       pick(raw, "fullExchangeName", "exchange"),
	}

	_ = q.cache.Set(ctx, key, snapshot)
	return snapshot, nil
}

func (q *QuoteClient) fetch(ctx context.Context, ticker string) (map[string]interface{}, error) {
	endpoint := q.endpoint + "?symbols=" + url.QueryEscape(ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; questscale/1.0)")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api http %d", resp.StatusCode)
	}

	var response struct {
		QuoteResponse struct {
			Result []map[string]interface{} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	if len(response.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data for '%s'", ticker)
	}
	return response.QuoteResponse.Result[0], nil
}

// pick returns the first present key's value, or "N/A".
func pick(m map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return "N/A"
}

// stockInfo wraps the quote client as a tool function.
func stockInfo(client *QuoteClient) func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	return func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
		ticker, _ := input["ticker"].(string)
		snapshot, err := client.Quote(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("failed to get stock info for %s: %v", ticker, err)
		}
		return snapshot, nil
	}
}
