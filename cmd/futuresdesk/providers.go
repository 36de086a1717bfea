package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/api"
	"github.com/ShayCichocki/futuresdesk/internal/config"
	"github.com/ShayCichocki/futuresdesk/internal/gemini"
	"github.com/ShayCichocki/futuresdesk/internal/market"
	"github.com/ShayCichocki/futuresdesk/internal/offline"
	"github.com/ShayCichocki/futuresdesk/internal/search"
)

// newToolExecutor wires the web search and market data tools.
func newToolExecutor(cfg *config.Config, logger *zap.Logger) *api.ToolExecutor {
	searcher := search.NewClient(search.Config{
		Endpoint:   cfg.Search.Endpoint,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    cfg.Search.Timeout,
		Logger:     logger,
	})
	fetcher := market.NewFetcher(market.FetcherConfig{
		BaseURL: cfg.Market.BaseURL,
		Days:    cfg.Market.Days,
		Timeout: cfg.Market.Timeout,
	})
	return api.NewToolExecutor(searcher, fetcher)
}

// provider is a built generator plus the Anthropic usage ledger when one exists.
type provider struct {
	api.Generator
	usage *api.UsageLedger
}

// newGenerator builds the generator for the configured provider.
func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.LLM.Provider {
	case config.ProviderOffline:
		return &provider{Generator: offline.New(cfg.LLM.OfflineDelay)}, nil

	case config.ProviderGemini:
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		gen, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:        key,
			Model:         cfg.LLM.Model,
			MaxTokens:     int32(cfg.LLM.MaxTokens),
			MaxIterations: cfg.LLM.MaxIterations,
			Executor:      newToolExecutor(cfg, logger),
		})
		if err != nil {
			return nil, err
		}
		return &provider{Generator: gen}, nil

	case config.ProviderAnthropic:
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		client, err := api.NewClient(api.ClientConfig{
			Model:         anthropic.Model(cfg.LLM.Model),
			APIKey:        key,
			UseAWSBedrock: cfg.Anthropic.Bedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
			BaseURL:       cfg.Anthropic.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		loop := api.NewAgentLoop(api.AgentLoopConfig{
			Client:        client,
			Executor:      newToolExecutor(cfg, logger),
			MaxIterations: cfg.LLM.MaxIterations,
			MaxTokens:     int64(cfg.LLM.MaxTokens),
		})
		streamLog := logger.Named("llm")
		loop.SetStreamHandler(func(ev api.StreamEvent) {
			switch ev.Type {
			case api.StreamToolUse:
				streamLog.Debug("tool call", zap.String("role", ev.Role), zap.String("tool", ev.Tool), zap.ByteString("input", ev.Input))
			case api.StreamTruncated:
				streamLog.Warn("answer hit the output token limit", zap.String("role", ev.Role))
			case api.StreamError:
				streamLog.Warn("model error", zap.String("role", ev.Role), zap.String("error", ev.Content))
			}
		})
		return &provider{Generator: api.NewClaudeGenerator(loop), usage: client.Usage()}, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.LLM.Provider)
	}
}
