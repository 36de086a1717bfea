package api

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Tool names exposed to the analysts.
const (
	ToolWebSearch   = "web_search"
	ToolFuturesData = "futures_data"
)

// ToolSpec is a provider-neutral tool schema.
type ToolSpec struct {
	Name        string
	Description string
	// Properties maps parameter name to a JSON schema fragment.
	Properties map[string]map[string]any
	Required   []string
}

var toolSpecs = []ToolSpec{
	{
		Name:        ToolWebSearch,
		Description: "Search the web for recent news about a futures variety. Returns titles, links and snippets.",
		Properties: map[string]map[string]any{
			"query": {
				"type":        "string",
				"description": "Search query, e.g. \"不锈钢期货 新闻\"",
			},
			"count": {
				"type":        "integer",
				"description": "Number of results to return (default 10, max 30)",
			},
		},
		Required: []string{"query"},
	},
	{
		Name:        ToolFuturesData,
		Description: "Fetch the most recent daily bars (open, high, low, close, volume, open interest) for a futures variety code as JSON.",
		Properties: map[string]map[string]any{
			"symbol": {
				"type":        "string",
				"description": "Futures variety code, e.g. \"ss\" or \"rb\"",
			},
		},
		Required: []string{"symbol"},
	},
}

// ToolSpecs returns the specs for the named tools, in the order given.
// Unknown names are skipped. With no names it returns every tool.
func ToolSpecs(names ...string) []ToolSpec {
	if len(names) == 0 {
		return append([]ToolSpec(nil), toolSpecs...)
	}
	var out []ToolSpec
	for _, n := range names {
		for _, s := range toolSpecs {
			if s.Name == n {
				out = append(out, s)
			}
		}
	}
	return out
}

// ToolDefinitions returns the named tools as Claude API tool params.
func ToolDefinitions(names ...string) []anthropic.ToolUnionParam {
	specs := ToolSpecs(names...)
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		props := make(map[string]interface{}, len(s.Properties))
		for k, v := range s.Properties {
			props[k] = v
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: anthropic.String(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   s.Required,
				},
			},
		})
	}
	return tools
}
