// Package api provides direct Anthropic API integration for the futures analysts.
package api

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultModel is used when no model is configured.
const DefaultModel = anthropic.ModelClaudeSonnet4_20250514

// ErrNoAPIKey is returned when no Anthropic key is configured for the direct API.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY environment variable is not set")

// ClientConfig selects how the Messages API is reached.
type ClientConfig struct {
	// Model defaults to DefaultModel. Bedrock model ids are derived from it.
	Model anthropic.Model
	// APIKey falls back to ANTHROPIC_API_KEY. Ignored with Bedrock.
	APIKey string
	// UseAWSBedrock routes calls through AWS Bedrock using the default AWS
	// credential chain.
	UseAWSBedrock bool
	AWSRegion     string
	AWSProfile    string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// DisableRetries turns off the SDK's automatic retries.
	DisableRetries bool
}

// Client is a Messages API client shared by every analyst of a run.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
	usage *UsageLedger
}

// NewClient creates a client for the direct API or Bedrock.
func NewClient(cfg ClientConfig) (*Client, error) {
	opts, err := requestOptions(cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if cfg.UseAWSBedrock {
		model = bedrockModel(model)
	}

	return &Client{
		inner: anthropic.NewClient(opts...),
		model: model,
		usage: NewUsageLedger(),
	}, nil
}

func requestOptions(cfg ClientConfig) ([]option.RequestOption, error) {
	var opts []option.RequestOption
	if cfg.UseAWSBedrock {
		var aws []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			aws = append(aws, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			aws = append(aws, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), aws...))
	} else {
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return nil, ErrNoAPIKey
		}
		opts = append(opts, option.WithAPIKey(key))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.DisableRetries {
		opts = append(opts, option.WithMaxRetries(0))
	}
	return opts, nil
}

// bedrockModel maps an Anthropic model name to its Bedrock cross-region
// inference profile, us.anthropic.<model>-v1:0. Other names pass through.
func bedrockModel(model anthropic.Model) anthropic.Model {
	name := string(model)
	if strings.HasPrefix(name, "claude-") {
		return anthropic.Model("us.anthropic." + name + "-v1:0")
	}
	return model
}

func (c *Client) sdk() *anthropic.Client {
	return &c.inner
}

// Model returns the model calls are made with.
func (c *Client) Model() anthropic.Model {
	return c.model
}

// Usage returns the client's per-role token ledger.
func (c *Client) Usage() *UsageLedger {
	return c.usage
}

// Usage counts Messages calls and their tokens.
type Usage struct {
	Calls        int
	InputTokens  int64
	OutputTokens int64
}

func (u *Usage) add(in, out int64) {
	u.Calls++
	u.InputTokens += in
	u.OutputTokens += out
}

// UsageLedger accumulates usage per analyst role. Safe for concurrent use.
type UsageLedger struct {
	mu     sync.Mutex
	byRole map[string]*Usage
}

// NewUsageLedger creates an empty ledger.
func NewUsageLedger() *UsageLedger {
	return &UsageLedger{byRole: make(map[string]*Usage)}
}

// Record adds one call's tokens to role.
func (l *UsageLedger) Record(role string, in, out int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.byRole[role]
	if !ok {
		u = &Usage{}
		l.byRole[role] = u
	}
	u.add(in, out)
}

// Role returns the usage recorded for role.
func (l *UsageLedger) Role(role string) Usage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u, ok := l.byRole[role]; ok {
		return *u
	}
	return Usage{}
}

// Roles lists the roles with recorded usage, sorted.
func (l *UsageLedger) Roles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	roles := make([]string, 0, len(l.byRole))
	for r := range l.byRole {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// Total sums usage over every role.
func (l *UsageLedger) Total() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()
	var t Usage
	for _, u := range l.byRole {
		t.Calls += u.Calls
		t.InputTokens += u.InputTokens
		t.OutputTokens += u.OutputTokens
	}
	return t
}
