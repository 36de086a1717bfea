package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// ErrToolBudget is returned when the model keeps calling tools after it was
// told to answer.
var ErrToolBudget = errors.New("tool budget exhausted before the model answered")

// Stream event types.
const (
	StreamText       = "text"
	StreamToolUse    = "tool_use"
	StreamToolResult = "tool_result"
	StreamTruncated  = "truncated"
	StreamDone       = "done"
	StreamError      = "error"
)

// StreamEvent is a progress notice from a running turn. The analysts of one
// phase share a loop, so Role tells them apart.
type StreamEvent struct {
	Role    string
	Type    string
	Content string
	Tool    string
	Input   json.RawMessage
}

// Turn is one analyst request: an instruction, a query and the tools the
// model may call while answering it.
type Turn struct {
	Role   string
	System string
	Prompt string
	Tools  []anthropic.ToolUnionParam
}

// ToolCall records one tool invocation made during a turn.
type ToolCall struct {
	Name    string
	Input   json.RawMessage
	IsError bool
}

// Transcript is the outcome of a turn.
type Transcript struct {
	// Text is the model's final answer.
	Text       string
	Iterations int
	ToolCalls  []ToolCall
	Usage      Usage
	// Truncated is set when the answer hit the output token limit.
	Truncated bool
}

// AgentLoop drives Messages API calls, executing tool calls between them
// until the model answers. It holds no per-turn state and serves concurrent
// turns.
type AgentLoop struct {
	client        *Client
	executor      *ToolExecutor
	onStream      func(StreamEvent)
	maxIterations int
	maxTokens     int64
}

// AgentLoopConfig contains configuration for the agent loop.
type AgentLoopConfig struct {
	Client   *Client
	Executor *ToolExecutor
	// MaxIterations caps Messages calls per turn. The last call withholds
	// tools so the model has to answer. Zero means 10.
	MaxIterations int
	// MaxTokens caps output tokens per call. Zero means 4096.
	MaxTokens int64
}

// NewAgentLoop creates a new agent loop with the given configuration.
func NewAgentLoop(cfg AgentLoopConfig) *AgentLoop {
	l := &AgentLoop{
		client:        cfg.Client,
		executor:      cfg.Executor,
		maxIterations: cfg.MaxIterations,
		maxTokens:     cfg.MaxTokens,
	}
	if l.maxIterations <= 0 {
		l.maxIterations = 10
	}
	if l.maxTokens <= 0 {
		l.maxTokens = 4096
	}
	if l.executor == nil {
		l.executor = NewToolExecutor(nil, nil)
	}
	return l
}

// SetStreamHandler sets a callback for progress events. It must be set
// before the first turn and be safe for concurrent use.
func (l *AgentLoop) SetStreamHandler(fn func(StreamEvent)) {
	l.onStream = fn
}

func (l *AgentLoop) emit(ev StreamEvent) {
	if l.onStream != nil {
		l.onStream(ev)
	}
}

// Run executes a turn. Without tools it is a single call.
func (l *AgentLoop) Run(ctx context.Context, turn Turn) (*Transcript, error) {
	tr := &Transcript{}
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Prompt)),
	}

	for tr.Iterations < l.maxIterations {
		tr.Iterations++
		params := anthropic.MessageNewParams{
			Model:     l.client.Model(),
			MaxTokens: l.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: turn.System}},
			Messages:  messages,
		}
		final := tr.Iterations == l.maxIterations
		if len(turn.Tools) > 0 {
			params.Tools = turn.Tools
			if final {
				params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
			}
		}

		resp, err := l.client.sdk().Messages.New(ctx, params)
		if err != nil {
			l.emit(StreamEvent{Role: turn.Role, Type: StreamError, Content: err.Error()})
			return tr, fmt.Errorf("messages call %d: %w", tr.Iterations, err)
		}
		tr.Usage.add(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		l.client.Usage().Record(turn.Role, resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var (
			text        strings.Builder
			assistant   []anthropic.ContentBlockParamUnion
			toolResults []anthropic.ContentBlockParamUnion
		)
		for _, block := range resp.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				text.WriteString(b.Text)
				l.emit(StreamEvent{Role: turn.Role, Type: StreamText, Content: b.Text})
				assistant = append(assistant, anthropic.NewTextBlock(b.Text))

			case anthropic.ToolUseBlock:
				l.emit(StreamEvent{Role: turn.Role, Type: StreamToolUse, Tool: b.Name, Input: b.Input})
				assistant = append(assistant, anthropic.NewToolUseBlock(b.ID, b.Input, b.Name))

				res := l.executor.Execute(ctx, b.Name, b.Input)
				tr.ToolCalls = append(tr.ToolCalls, ToolCall{Name: b.Name, Input: b.Input, IsError: res.IsError})
				l.emit(StreamEvent{Role: turn.Role, Type: StreamToolResult, Tool: b.Name, Content: clip(res.Content, 500)})
				toolResults = append(toolResults, anthropic.NewToolResultBlock(b.ID, res.Content, res.IsError))
			}
		}

		if resp.StopReason != anthropic.StopReasonToolUse || len(toolResults) == 0 {
			tr.Text = text.String()
			if resp.StopReason == anthropic.StopReasonMaxTokens {
				tr.Truncated = true
				l.emit(StreamEvent{Role: turn.Role, Type: StreamTruncated})
			}
			l.emit(StreamEvent{Role: turn.Role, Type: StreamDone})
			return tr, nil
		}
		if final {
			break
		}

		messages = append(messages,
			anthropic.NewAssistantMessage(assistant...),
			anthropic.NewUserMessage(toolResults...),
		)
	}

	return tr, fmt.Errorf("%w after %d calls", ErrToolBudget, tr.Iterations)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
