package offline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/futuresdesk/internal/api"
)

func TestGenerateIsDeterministic(t *testing.T) {
	g := New(0)
	req := api.GenerateRequest{Role: "news", Prompt: "Analyze news for 不锈钢 futures.", Tools: []string{api.ToolWebSearch}}

	a, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, _ := g.Generate(context.Background(), req)
	if a != b {
		t.Error("Generate() is not deterministic")
	}
	for _, want := range []string{"# News digest (offline)", "不锈钢", "web_search"} {
		if !strings.Contains(a, want) {
			t.Errorf("output missing %q:\n%s", want, a)
		}
	}
}

func TestGenerateEveryRole(t *testing.T) {
	g := New(0)
	for role := range headings {
		out, err := g.Generate(context.Background(), api.GenerateRequest{Role: role, Prompt: "p"})
		if err != nil || out == "" {
			t.Errorf("Generate(%s) = %q, %v", role, out, err)
		}
	}
	if _, err := g.Generate(context.Background(), api.GenerateRequest{Role: "macro"}); err == nil {
		t.Error("Generate(macro) should fail")
	}
}

func TestGenerateHonorsContext(t *testing.T) {
	g := New(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, api.GenerateRequest{Role: "news"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Generate() error = %v, want deadline exceeded", err)
	}
}

func TestFirstLineTruncates(t *testing.T) {
	long := strings.Repeat("界", 200) + "\nsecond"
	got := firstLine(long)
	if !strings.HasSuffix(got, "...") || strings.Contains(got, "second") {
		t.Errorf("firstLine() = %q", got)
	}
}
