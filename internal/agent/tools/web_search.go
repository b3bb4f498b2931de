package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/tripgram/server/internal/agent/model"
)

type WebSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type WebSearchOutput struct {
	Query   string            `json:"query"`
	Results []WebSearchResult `json:"results"`
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []WebSearchResult `json:"results"`
}

// NewWebSearchTool calls the hosted search API. The http.Client is injected
// so tests can point it at a stub server.
func NewWebSearchTool(cfg model.SearchConfig, httpClient *http.Client) tool.InvokableTool {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolWebSearch,
			Desc: "Search the web for current information. Use for questions about facts, events or anything outside the application's own data.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Search keywords",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of results to return (default 5)",
				},
			}),
		},
		func(ctx context.Context, in *WebSearchInput) (*WebSearchOutput, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return nil, fmt.Errorf("query is required")
			}
			if cfg.APIKey == "" {
				return nil, fmt.Errorf("web search is not configured")
			}
			maxResults := in.MaxResults
			if maxResults <= 0 || maxResults > 10 {
				maxResults = cfg.MaxResults
			}

			body, err := json.Marshal(searchRequest{
				APIKey:     cfg.APIKey,
				Query:      query,
				MaxResults: maxResults,
			})
			if err != nil {
				return nil, fmt.Errorf("marshal search request: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				strings.TrimRight(cfg.BaseURL, "/")+"/search", bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("build search request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("search request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
				return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, snippet)
			}

			var parsed searchResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				return nil, fmt.Errorf("decode search response: %w", err)
			}

			return &WebSearchOutput{Query: query, Results: parsed.Results}, nil
		},
	)
}
