package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ShayCichocki/futuresdesk/internal/api"
)

type scriptedModels struct {
	responses []*genai.GenerateContentResponse
	err       error
	calls     [][]*genai.Content
	configs   []*genai.GenerateContentConfig
}

func (s *scriptedModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls = append(s.calls, append([]*genai.Content(nil), contents...))
	s.configs = append(s.configs, cfg)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

func respond(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

type stubFetcher struct{ symbol string }

func (s *stubFetcher) Fetch(_ context.Context, symbol string) (string, error) {
	s.symbol = symbol
	return `{"symbol":"ss","latest":{"close":14015}}`, nil
}

func TestGenerateText(t *testing.T) {
	m := &scriptedModels{responses: []*genai.GenerateContentResponse{respond(genai.NewPartFromText(" Bearish. "))}}
	g := newGenerator(m, Config{})

	out, err := g.Generate(context.Background(), api.GenerateRequest{System: "sys", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Bearish.", out)
	assert.Empty(t, m.configs[0].Tools)
	assert.NotNil(t, m.configs[0].SystemInstruction)
}

func TestGenerateFunctionCall(t *testing.T) {
	call := &genai.Part{FunctionCall: &genai.FunctionCall{ID: "c1", Name: api.ToolFuturesData, Args: map[string]any{"symbol": "ss"}}}
	m := &scriptedModels{responses: []*genai.GenerateContentResponse{
		respond(call),
		respond(genai.NewPartFromText("Close at 14015.")),
	}}
	fetcher := &stubFetcher{}
	g := newGenerator(m, Config{Executor: api.NewToolExecutor(nil, fetcher)})

	out, err := g.Generate(context.Background(), api.GenerateRequest{Prompt: "p", Tools: []string{api.ToolFuturesData}})
	require.NoError(t, err)
	assert.Equal(t, "Close at 14015.", out)
	assert.Equal(t, "ss", fetcher.symbol)

	require.Len(t, m.calls, 2)
	second := m.calls[1]
	require.Len(t, second, 3)
	last := second[2].Parts[0].FunctionResponse
	require.NotNil(t, last)
	assert.Equal(t, "c1", last.ID)
	assert.Contains(t, last.Response["output"], "14015")

	decls := m.configs[0].Tools[0].FunctionDeclarations
	require.Len(t, decls, 1)
	assert.Equal(t, api.ToolFuturesData, decls[0].Name)
	assert.Equal(t, genai.TypeString, decls[0].Parameters.Properties["symbol"].Type)
}

func TestGenerateErrors(t *testing.T) {
	m := &scriptedModels{err: errors.New("quota exceeded")}
	_, err := newGenerator(m, Config{}).Generate(context.Background(), api.GenerateRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "quota exceeded")

	m = &scriptedModels{responses: []*genai.GenerateContentResponse{respond()}}
	_, err = newGenerator(m, Config{}).Generate(context.Background(), api.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, api.ErrEmptyOutput)
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewGenerator(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
