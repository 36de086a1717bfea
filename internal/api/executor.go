package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Searcher is the web search collaborator. It degrades to an explanatory
// string rather than failing.
type Searcher interface {
	Search(ctx context.Context, query string, count int) string
}

// DataFetcher is the market data collaborator.
type DataFetcher interface {
	Fetch(ctx context.Context, symbol string) (string, error)
}

// ToolExecutor executes tool calls from the model.
type ToolExecutor struct {
	search Searcher
	market DataFetcher
}

// NewToolExecutor creates a tool executor. Either collaborator may be nil, in
// which case its tool reports itself unavailable.
func NewToolExecutor(search Searcher, market DataFetcher) *ToolExecutor {
	return &ToolExecutor{search: search, market: market}
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

// Execute runs a tool by name with the given JSON input.
func (e *ToolExecutor) Execute(ctx context.Context, name string, input json.RawMessage) ToolResult {
	switch name {
	case ToolWebSearch:
		return e.execSearch(ctx, input)
	case ToolFuturesData:
		return e.execFuturesData(ctx, input)
	default:
		return ToolResult{Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}
}

func (e *ToolExecutor) execSearch(ctx context.Context, input json.RawMessage) ToolResult {
	var params struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}
	if strings.TrimSpace(params.Query) == "" {
		return ToolResult{Content: "query is required", IsError: true}
	}
	if e.search == nil {
		return ToolResult{Content: "web search is not configured", IsError: true}
	}
	return ToolResult{Content: e.search.Search(ctx, params.Query, params.Count)}
}

func (e *ToolExecutor) execFuturesData(ctx context.Context, input json.RawMessage) ToolResult {
	var params struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}
	if strings.TrimSpace(params.Symbol) == "" {
		return ToolResult{Content: "symbol is required", IsError: true}
	}
	if e.market == nil {
		return ToolResult{Content: "futures data is not configured", IsError: true}
	}
	out, err := e.market.Fetch(ctx, params.Symbol)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to fetch futures data: %v", err), IsError: true}
	}
	return ToolResult{Content: out}
}
