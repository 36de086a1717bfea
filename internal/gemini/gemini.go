// Package gemini implements the analyst Generator on Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/ShayCichocki/futuresdesk/internal/api"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned when no Gemini key is configured.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY environment variable is not set")

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Generator.
type Config struct {
	APIKey        string
	Model         string
	MaxTokens     int32
	MaxIterations int
	// Executor runs the tools the model calls.
	Executor *api.ToolExecutor
}

// Generator produces analyst text with Gemini function calling.
type Generator struct {
	models        contentGenerator
	model         string
	maxTokens     int32
	maxIterations int
	executor      *api.ToolExecutor
}

// NewGenerator creates a Gemini-backed generator.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(models contentGenerator, cfg Config) *Generator {
	g := &Generator{
		models:        models,
		model:         cfg.Model,
		maxTokens:     cfg.MaxTokens,
		maxIterations: cfg.MaxIterations,
		executor:      cfg.Executor,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.maxTokens == 0 {
		g.maxTokens = 4096
	}
	if g.maxIterations == 0 {
		g.maxIterations = 10
	}
	if g.executor == nil {
		g.executor = api.NewToolExecutor(nil, nil)
	}
	return g
}

// Generate runs the request, resolving function calls until the model answers in text.
func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if decls := functionDeclarations(req.Tools); len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	for i := 0; i < g.maxIterations; i++ {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("GenAI generate failed: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			out := strings.TrimSpace(resp.Text())
			if out == "" {
				return "", api.ErrEmptyOutput
			}
			return out, nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			input, err := json.Marshal(call.Args)
			if err != nil {
				input = []byte("{}")
			}
			result := g.executor.Execute(ctx, call.Name, input)
			key := "output"
			if result.IsError {
				key = "error"
			}
			part := genai.NewPartFromFunctionResponse(call.Name, map[string]any{key: result.Content})
			part.FunctionResponse.ID = call.ID
			parts = append(parts, part)
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("max iterations (%d) reached", g.maxIterations)
}

// functionDeclarations converts tool specs into Gemini declarations.
func functionDeclarations(names []string) []*genai.FunctionDeclaration {
	if len(names) == 0 {
		return nil
	}
	specs := api.ToolSpecs(names...)
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		props := make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			schema := &genai.Schema{Type: schemaType(p["type"])}
			if d, ok := p["description"].(string); ok {
				schema.Description = d
			}
			props[name] = schema
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   s.Required,
			},
		})
	}
	return decls
}

func schemaType(v any) genai.Type {
	switch v {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
