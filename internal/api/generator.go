package api

import (
	"context"
	"errors"
	"strings"
)

// GenerateRequest is one language-generation call made by an analyst.
type GenerateRequest struct {
	// Role names the analyst, for logs and the offline generator.
	Role string
	// System is the role instruction.
	System string
	// Prompt is the user query, optionally embedding earlier phase outputs.
	Prompt string
	// Tools lists the tool names the model may call.
	Tools []string
}

// Generator produces free text for a request. It is implemented by the
// Claude, Gemini and offline providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ErrEmptyOutput is returned when a model ends its turn without text.
var ErrEmptyOutput = errors.New("model returned no text")

// ClaudeGenerator generates text through the Anthropic agent loop.
type ClaudeGenerator struct {
	loop *AgentLoop
}

// NewClaudeGenerator wraps an agent loop as a Generator.
func NewClaudeGenerator(loop *AgentLoop) *ClaudeGenerator {
	return &ClaudeGenerator{loop: loop}
}

// Generate runs the request as one turn. A truncated answer is still returned.
func (g *ClaudeGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	turn := Turn{Role: req.Role, System: req.System, Prompt: req.Prompt}
	if len(req.Tools) > 0 {
		turn.Tools = ToolDefinitions(req.Tools...)
	}
	tr, err := g.loop.Run(ctx, turn)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(tr.Text)
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
