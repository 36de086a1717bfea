// Package offline provides a deterministic Generator for demo and dry runs.
// It never touches the network, so the whole flow runs without API keys.
package offline

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/ShayCichocki/futuresdesk/internal/api"
)

// Generator returns canned reports keyed by role.
type Generator struct {
	// Delay simulates model latency per call.
	Delay time.Duration
}

var _ api.Generator = (*Generator)(nil)

// New creates an offline generator.
func New(delay time.Duration) *Generator {
	return &Generator{Delay: delay}
}

var headings = map[string]string{
	"news":        "News digest",
	"sentiment":   "Market sentiment",
	"fundamental": "Fundamental and technical view",
	"bullish":     "Bullish strategy",
	"bearish":     "Bearish strategy",
	"summary":     "Comprehensive investment report",
}

// Generate returns a report for req.Role. The same request always yields the
// same text.
func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	heading, ok := headings[req.Role]
	if !ok {
		return "", fmt.Errorf("offline generator has no template for role %q", req.Role)
	}

	h := fnv.New32a()
	h.Write([]byte(req.Prompt))
	score := int(h.Sum32()%41) - 20

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (offline)\n\n", heading)
	fmt.Fprintf(&b, "Request: %s\n\n", firstLine(req.Prompt))
	fmt.Fprintf(&b, "Bias score: %+d (range -20..+20)\n\n", score)
	if len(req.Tools) > 0 {
		fmt.Fprintf(&b, "Tools available but not called: %s\n\n", strings.Join(req.Tools, ", "))
	}
	b.WriteString("This report was produced without a language model and carries no market information.\n")
	return b.String(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 160
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
