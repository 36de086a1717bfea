package config

import (
	"gopkg.in/yaml.v3"
)

// Settings returns the effective configuration as a nested map, API keys
// masked and durations rendered as strings.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"llm": map[string]any{
			"provider":       string(c.LLM.Provider),
			"model":          c.LLM.Model,
			"max_tokens":     c.LLM.MaxTokens,
			"max_iterations": c.LLM.MaxIterations,
			"offline_delay":  c.LLM.OfflineDelay.String(),
		},
		"anthropic": map[string]any{
			"api_key":     MaskAPIKey(c.Anthropic.APIKey),
			"bedrock":     c.Anthropic.Bedrock,
			"aws_region":  c.Anthropic.AWSRegion,
			"aws_profile": c.Anthropic.AWSProfile,
			"base_url":    c.Anthropic.BaseURL,
		},
		"gemini": map[string]any{
			"api_key": MaskAPIKey(c.Gemini.APIKey),
		},
		"search": map[string]any{
			"endpoint":    c.Search.Endpoint,
			"max_results": c.Search.MaxResults,
			"timeout":     c.Search.Timeout.String(),
		},
		"market": map[string]any{
			"base_url": c.Market.BaseURL,
			"days":     c.Market.Days,
			"timeout":  c.Market.Timeout.String(),
		},
		"report": map[string]any{
			"dir":      c.Report.Dir,
			"language": c.Report.Language,
		},
		"timeouts": map[string]any{
			"task":      c.Timeouts.Task.String(),
			"aggregate": c.Timeouts.Aggregate.String(),
		},
		"orchestrator": map[string]any{
			"max_concurrency": c.Orchestrator.MaxConcurrency,
			"event_buffer":    c.Orchestrator.EventBuffer,
		},
		"history": map[string]any{
			"enabled": c.History.Enabled,
			"db_path": c.History.DBPath,
		},
		"logging": map[string]any{
			"level": c.Logging.Level,
			"file":  c.Logging.File,
		},
	}
}

// YAML renders Settings as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Settings())
}
