package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when the selected provider has no API key configured.
var ErrNoAPIKey = errors.New("no API key configured")

// providerEnv lists the environment variables consulted per provider, in order.
var providerEnv = map[Provider][]string{
	ProviderAnthropic: {EnvPrefix + "_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	ProviderGemini:    {EnvPrefix + "_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// GetAPIKey returns the API key for the configured provider. The offline
// provider and Anthropic via Bedrock need none and return "".
func GetAPIKey(cfg *Config) (string, error) {
	switch cfg.LLM.Provider {
	case ProviderOffline:
		return "", nil
	case ProviderAnthropic:
		if cfg.Anthropic.Bedrock {
			return "", nil
		}
	}

	for _, name := range providerEnv[cfg.LLM.Provider] {
		if key := os.Getenv(name); key != "" {
			return key, nil
		}
	}
	if key := configuredKey(cfg); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w for provider %s", ErrNoAPIKey, cfg.LLM.Provider)
}

func configuredKey(cfg *Config) string {
	var key string
	switch cfg.LLM.Provider {
	case ProviderAnthropic:
		key = cfg.Anthropic.APIKey
	case ProviderGemini:
		key = cfg.Gemini.APIKey
	}
	key = os.ExpandEnv(key)
	if strings.HasPrefix(key, "${") {
		return ""
	}
	return key
}

// ValidateAPIKey performs basic format checks. It does not contact the provider.
func ValidateAPIKey(provider Provider, key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if provider == ProviderAnthropic && !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource returns where the provider's API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	for _, name := range providerEnv[cfg.LLM.Provider] {
		if os.Getenv(name) != "" {
			return KeySourceEnv
		}
	}
	if configuredKey(cfg) != "" {
		return KeySourceConfig
	}
	return KeySourceNone
}
