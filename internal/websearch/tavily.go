package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Client queries the Tavily search API for supplier contact leads.
// Without an API key every search returns no results.
type Client struct {
	apiKey string
	http   *http.Client
	log    zerolog.Logger
}

func New(apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    logger,
	}
}

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// SearchSuppliers looks for Chinese distributors and agents of a brand.
func (c *Client) SearchSuppliers(ctx context.Context, brand string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	query := fmt.Sprintf("%s 中国 代理商 经销商 供应商 联系方式 电话", strings.TrimSpace(brand))
	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  5,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily search: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("tavily decode: %w", err)
	}
	c.log.Debug().Str("brand", brand).Int("results", len(sr.Results)).Msg("web search done")
	return sr.Results, nil
}

// FormatResults renders search hits as user-facing Chinese text.
func FormatResults(brand string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("未找到 %s 的供应商信息。", brand)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "为您找到以下 %s 相关供应商线索：\n", brand)
	for i, r := range results {
		content := r.Content
		if cr := []rune(content); len(cr) > 120 {
			content = string(cr[:120]) + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   来源: %s\n", i+1, r.Title, content, r.URL)
	}
	return strings.TrimSpace(b.String())
}
