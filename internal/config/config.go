// Package config handles configuration loading for futuresdesk.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/futuresdesk/internal/market"
	"github.com/ShayCichocki/futuresdesk/internal/search"
)

// Provider names a language-generation backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOffline   Provider = "offline"
)

// ProjectFileName is the project-level config file searched upward from the
// working directory.
const ProjectFileName = ".futuresdesk.yaml"

// EnvPrefix prefixes every environment override, e.g. FUTURESDESK_LLM_PROVIDER.
const EnvPrefix = "FUTURESDESK"

// Config holds all configuration for futuresdesk.
type Config struct {
	LLM          LLMConfig          `mapstructure:"llm"`
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Search       SearchConfig       `mapstructure:"search"`
	Market       MarketConfig       `mapstructure:"market"`
	Report       ReportConfig       `mapstructure:"report"`
	Timeouts     TimeoutsConfig     `mapstructure:"timeouts"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	History      HistoryConfig      `mapstructure:"history"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// LLMConfig selects and tunes the language-generation provider.
type LLMConfig struct {
	Provider Provider `mapstructure:"provider"`
	// Model overrides the provider's default model.
	Model         string `mapstructure:"model"`
	MaxTokens     int    `mapstructure:"max_tokens"`
	MaxIterations int    `mapstructure:"max_iterations"`
	// OfflineDelay simulates latency for the offline provider.
	OfflineDelay time.Duration `mapstructure:"offline_delay"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Bedrock    bool   `mapstructure:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
	BaseURL    string `mapstructure:"base_url"`
}

// GeminiConfig holds Google GenAI settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SearchConfig tunes the web search tool.
type SearchConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MarketConfig tunes the futures data tool.
type MarketConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Days    int           `mapstructure:"days"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig controls where and in which language reports are written.
type ReportConfig struct {
	Dir      string `mapstructure:"dir"`
	Language string `mapstructure:"language"`
}

// TimeoutsConfig bounds individual operations. Zero means no limit.
type TimeoutsConfig struct {
	Task      time.Duration `mapstructure:"task"`
	Aggregate time.Duration `mapstructure:"aggregate"`
}

// OrchestratorConfig tunes the run engine.
type OrchestratorConfig struct {
	// MaxConcurrency caps tasks of one phase running together. Zero runs all.
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// EventBuffer sizes the event channel feeding the TUI.
	EventBuffer int `mapstructure:"event_buffer"`
}

// HistoryConfig controls the SQLite run history.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DBPath overrides the default history database location.
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`
	// File, when set, receives a JSON copy of every log line.
	File string `mapstructure:"file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (FUTURESDESK_*, ANTHROPIC_API_KEY, GEMINI_API_KEY)
// 2. Project config (.futuresdesk.yaml in current directory or parent)
// 3. User config (~/.config/futuresdesk/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom is Load with the project search starting at dir.
func LoadFrom(dir string) (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(dir); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return decode(v)
}

// LoadFromPath loads configuration from a specific file on top of defaults
// and environment overrides.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional provider variables
	v.BindEnv("anthropic.api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	v.BindEnv("anthropic.aws_region", EnvPrefix+"_ANTHROPIC_AWS_REGION", "AWS_REGION")
	v.BindEnv("anthropic.aws_profile", EnvPrefix+"_ANTHROPIC_AWS_PROFILE", "AWS_PROFILE")
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Gemini.APIKey = expandEnv(cfg.Gemini.APIKey)
	cfg.LLM.Provider = Provider(strings.ToLower(strings.TrimSpace(string(cfg.LLM.Provider))))
	cfg.Report.Dir = expandHome(cfg.Report.Dir)
	cfg.History.DBPath = expandHome(cfg.History.DBPath)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderGemini, ProviderOffline:
	default:
		return fmt.Errorf("llm.provider %q is not one of anthropic, gemini, offline", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.MaxIterations <= 0 {
		return fmt.Errorf("llm.max_iterations must be positive, got %d", c.LLM.MaxIterations)
	}
	if c.Orchestrator.MaxConcurrency < 0 {
		return fmt.Errorf("orchestrator.max_concurrency must not be negative, got %d", c.Orchestrator.MaxConcurrency)
	}
	if c.Timeouts.Task < 0 || c.Timeouts.Aggregate < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it
// exists in the working directory or a parent.
func GetProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findProjectConfig(cwd)
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("llm.provider", string(d.LLM.Provider))
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.max_iterations", d.LLM.MaxIterations)
	v.SetDefault("llm.offline_delay", d.LLM.OfflineDelay.String())

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")
	v.SetDefault("anthropic.base_url", "")

	v.SetDefault("gemini.api_key", "")

	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.timeout", d.Search.Timeout.String())

	v.SetDefault("market.base_url", d.Market.BaseURL)
	v.SetDefault("market.days", d.Market.Days)
	v.SetDefault("market.timeout", d.Market.Timeout.String())

	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("report.language", d.Report.Language)

	v.SetDefault("timeouts.task", d.Timeouts.Task.String())
	v.SetDefault("timeouts.aggregate", d.Timeouts.Aggregate.String())

	v.SetDefault("orchestrator.max_concurrency", d.Orchestrator.MaxConcurrency)
	v.SetDefault("orchestrator.event_buffer", d.Orchestrator.EventBuffer)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// getUserConfigDir returns the XDG config directory for futuresdesk.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "futuresdesk")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "futuresdesk")
	}
	return filepath.Join(home, ".config", "futuresdesk")
}

// findProjectConfig searches for .futuresdesk.yaml in dir and its parents.
func findProjectConfig(dir string) string {
	for {
		configPath := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      ProviderAnthropic,
			Model:         "",
			MaxTokens:     4096,
			MaxIterations: 10,
			OfflineDelay:  300 * time.Millisecond,
		},
		Search: SearchConfig{
			Endpoint:   search.DefaultEndpoint,
			MaxResults: 5,
			Timeout:    15 * time.Second,
		},
		Market: MarketConfig{
			BaseURL: market.DefaultBaseURL,
			Days:    market.DefaultDays,
			Timeout: 15 * time.Second,
		},
		Report: ReportConfig{
			Dir:      "reports",
			Language: "zh-CN",
		},
		Timeouts: TimeoutsConfig{
			Task:      5 * time.Minute,
			Aggregate: 5 * time.Minute,
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrency: 0,
			EventBuffer:    256,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
