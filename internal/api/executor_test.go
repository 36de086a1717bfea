package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type fakeSearcher struct {
	query string
	count int
}

func (f *fakeSearcher) Search(_ context.Context, query string, count int) string {
	f.query, f.count = query, count
	return "1. Nickel rallies"
}

type fakeFetcher struct {
	err error
}

func (f fakeFetcher) Fetch(_ context.Context, symbol string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return `{"symbol":"` + symbol + `"}`, nil
}

func TestToolExecutor_UnknownTool(t *testing.T) {
	executor := NewToolExecutor(nil, nil)

	result := executor.Execute(context.Background(), "Bash", json.RawMessage(`{}`))
	if !result.IsError {
		t.Error("Expected error for unknown tool")
	}
	if !strings.Contains(result.Content, "Unknown tool") {
		t.Errorf("Error message = %q, should contain 'Unknown tool'", result.Content)
	}
}

func TestToolExecutor_WebSearch(t *testing.T) {
	s := &fakeSearcher{}
	executor := NewToolExecutor(s, nil)

	result := executor.Execute(context.Background(), ToolWebSearch, json.RawMessage(`{"query":"不锈钢 期货","count":5}`))
	if result.IsError {
		t.Fatalf("web_search failed: %s", result.Content)
	}
	if s.query != "不锈钢 期货" || s.count != 5 {
		t.Errorf("search called with (%q, %d)", s.query, s.count)
	}
	if result.Content != "1. Nickel rallies" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestToolExecutor_InputErrors(t *testing.T) {
	executor := NewToolExecutor(&fakeSearcher{}, fakeFetcher{})

	tests := []struct {
		name  string
		tool  string
		input string
		want  string
	}{
		{"bad json", ToolWebSearch, `{`, "Invalid parameters"},
		{"empty query", ToolWebSearch, `{"query":" "}`, "query is required"},
		{"empty symbol", ToolFuturesData, `{}`, "symbol is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := executor.Execute(context.Background(), tt.tool, json.RawMessage(tt.input))
			if !result.IsError || !strings.Contains(result.Content, tt.want) {
				t.Errorf("Execute() = %+v, want error containing %q", result, tt.want)
			}
		})
	}
}

func TestToolExecutor_FuturesData(t *testing.T) {
	result := NewToolExecutor(nil, fakeFetcher{}).Execute(context.Background(), ToolFuturesData, json.RawMessage(`{"symbol":"ss"}`))
	if result.IsError || result.Content != `{"symbol":"ss"}` {
		t.Errorf("Execute() = %+v", result)
	}

	result = NewToolExecutor(nil, fakeFetcher{err: errors.New("unknown futures symbol")}).
		Execute(context.Background(), ToolFuturesData, json.RawMessage(`{"symbol":"zz"}`))
	if !result.IsError || !strings.Contains(result.Content, "unknown futures symbol") {
		t.Errorf("Execute() = %+v, want fetch error", result)
	}
}

func TestToolExecutor_Unconfigured(t *testing.T) {
	executor := NewToolExecutor(nil, nil)
	for _, tool := range []string{ToolWebSearch, ToolFuturesData} {
		result := executor.Execute(context.Background(), tool, json.RawMessage(`{"query":"x","symbol":"x"}`))
		if !result.IsError || !strings.Contains(result.Content, "not configured") {
			t.Errorf("%s: Execute() = %+v, want not configured", tool, result)
		}
	}
}
