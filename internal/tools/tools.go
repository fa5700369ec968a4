package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/questscale"
	"github.com/ZanzyTHEbar/questscale/internal/adapters"
)

// Config carries the settings the built-in tool set needs.
type Config struct {
	// TavilyAPIKey authenticates web searches.
	TavilyAPIKey string

	// SearchQuota caps web searches for the process. Nil means unmetered.
	SearchQuota *Quota

	// QuoteCacheTTL bounds how long a stock snapshot is reused.
	QuoteCacheTTL time.Duration
}

// Setup builds the built-in tool set in presentation order: date grounding
// first, then search, arithmetic, and market data.
func Setup(cfg Config) []questscale.Tool {
	quota := cfg.SearchQuota
	if quota == nil {
		quota = NewQuota(0)
	}
	ttl := cfg.QuoteCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	searchClient := NewTavilyClient(cfg.TavilyAPIKey)
	quoteClient := NewQuoteClient(ttl)

	return []questscale.Tool{
		adapters.NewGoToolAdapter("current_date", currentDate,
			adapters.WithDescription("Returns the current date and time. ALWAYS use this at the start to establish temporal context for your research. Essential for determining if events/dates mentioned in other sources are current, upcoming, or historical."),
			adapters.WithReturns("The current date with explicit year, month, and day."),
			adapters.WithCategory("time"),
		),
		adapters.NewGoToolAdapter("search_web", webSearch(searchClient, quota),
			adapters.WithDescription("Searches the internet for information. Useful for finding recent news, articles, analysis, and general information about any topic. Returns a list of relevant web pages with titles, URLs, and content snippets."),
			adapters.WithParameters(map[string]string{
				"query":       "The search query to look up on the internet. Be specific and include relevant keywords for better results.",
				"max_results": "Maximum number of search results to return. Default is 5.",
			}),
			adapters.WithReturns("A list of search hits with title, url, and content."),
			adapters.WithValidator(requireString("query")),
			adapters.WithCategory("research"),
		),
		adapters.NewGoToolAdapter("calculator", calculate,
			adapters.WithDescription("Performs mathematical calculations on numbers. Useful for calculating percentages, differences, growth rates, and validating numerical data. IMPORTANT: Use this to verify calculations and ensure numerical accuracy in your analysis."),
			adapters.WithParameters(map[string]string{
				"expression": "A mathematical expression to calculate. Examples: '435.15 - 349.07', '(100 / 50) * 2', '15.5 + 20.3'",
			}),
			adapters.WithReturns("The expression and its computed value."),
			adapters.WithExamples([]string{
				`{"expression": "435.15 - 349.07"}`,
				`{"expression": "(100 / 50) * 2"}`,
			}),
			adapters.WithValidator(requireString("expression")),
			adapters.WithCategory("math"),
		),
		adapters.NewGoToolAdapter("get_stock_info", stockInfo(quoteClient),
			adapters.WithDescription("Gets stock information from Yahoo Finance including current price, market data, and company details. Useful for analyzing stocks, ETFs, and market indices. Supports global markets. Returns current price, market cap, PE ratio, dividends, 52-week range, volume, and more."),
			adapters.WithParameters(map[string]string{
				"ticker": "The stock ticker symbol. Examples: 'AAPL', 'GOOGL', 'MSFT', 'TSLA', '0700.HK'",
			}),
			adapters.WithReturns("A flat map of quote fields; missing fields are reported as 'N/A'."),
			adapters.WithValidator(requireString("ticker")),
			adapters.WithCategory("finance"),
		),
	}
}

// requireString validates that a key is present as a non-empty string.
func requireString(key string) func(map[string]interface{}) error {
	return func(input map[string]interface{}) error {
		if input == nil {
			return fmt.Errorf("input cannot be nil")
		}
		value, ok := input[key].(string)
		if !ok || strings.TrimSpace(value) == "" {
			return fmt.Errorf("'%s' must be a non-empty string", key)
		}
		return nil
	}
}
