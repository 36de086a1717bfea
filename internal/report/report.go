// Package report persists analyst reports as markdown files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Kind identifies which analyst produced a report.
type Kind string

const (
	KindNews        Kind = "news"
	KindSentiment   Kind = "sentiment"
	KindFundamental Kind = "fundamental"
	KindBullish     Kind = "bullish"
	KindBearish     Kind = "bearish"
	KindSummary     Kind = "summary"
)

var titles = map[Kind]string{
	KindNews:        "Futures News Report",
	KindSentiment:   "Futures Market Sentiment Report",
	KindFundamental: "Futures Fundamental Report",
	KindBullish:     "Bullish Case Report",
	KindBearish:     "Bearish Case Report",
	KindSummary:     "Futures Analysis Summary",
}

// Title returns the document heading for k.
func (k Kind) Title() string {
	if t, ok := titles[k]; ok {
		return t
	}
	return string(k) + " report"
}

// FrontMatter is the TOML header written at the top of each report.
type FrontMatter struct {
	Kind    string    `toml:"kind"`
	Label   string    `toml:"label"`
	Symbol  string    `toml:"symbol,omitempty"`
	RunID   string    `toml:"run_id,omitempty"`
	Created time.Time `toml:"created"`
}

// Saver writes reports into a directory.
type Saver struct {
	dir   string
	runID string
	now   func() time.Time
}

// NewSaver returns a Saver rooted at dir.
func NewSaver(dir string) *Saver {
	return &Saver{dir: dir, now: time.Now}
}

// ForRun returns a copy of the Saver that writes into a runID subdirectory
// and stamps runID into front matter.
func (s *Saver) ForRun(runID string) *Saver {
	c := *s
	c.runID = runID
	if runID != "" {
		c.dir = filepath.Join(s.dir, sanitize(runID))
	}
	return &c
}

// Dir returns the reports directory.
func (s *Saver) Dir() string { return s.dir }

// Save writes content as <kind>_<label>_<timestamp>.md and returns the path
// written. On failure it returns a description of the failure instead; it
// never returns an error.
func (s *Saver) Save(kind Kind, label, content string) string {
	path, err := s.write(kind, label, "", content)
	if err != nil {
		return fmt.Sprintf("save %s report failed: %v", kind, err)
	}
	return path
}

// SaveFor is Save with the symbol recorded in front matter.
func (s *Saver) SaveFor(kind Kind, symbol, label, content string) string {
	path, err := s.write(kind, label, symbol, content)
	if err != nil {
		return fmt.Sprintf("save %s report failed: %v", kind, err)
	}
	return path
}

func (s *Saver) write(kind Kind, label, symbol, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	now := s.now()
	fm := FrontMatter{
		Kind:    string(kind),
		Label:   label,
		Symbol:  symbol,
		RunID:   s.runID,
		Created: now.Truncate(time.Second),
	}
	header, err := toml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("+++\n")
	b.Write(header)
	b.WriteString("+++\n\n")
	fmt.Fprintf(&b, "# %s\n\n", kind.Title())
	fmt.Fprintf(&b, "**Generated**: %s  \n**Subject**: %s\n\n---\n\n", now.Format("2006-01-02 15:04:05"), label)
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}

	name := fmt.Sprintf("%s_%s_%s.md", kind, sanitize(label), now.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// Read parses a report written by Save into its front matter and body.
func Read(path string) (FrontMatter, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FrontMatter{}, "", err
	}
	rest, ok := strings.CutPrefix(string(data), "+++\n")
	if !ok {
		return FrontMatter{}, "", fmt.Errorf("%s: missing front matter", path)
	}
	header, body, ok := strings.Cut(rest, "+++\n")
	if !ok {
		return FrontMatter{}, "", fmt.Errorf("%s: unterminated front matter", path)
	}
	var fm FrontMatter
	if err := toml.Unmarshal([]byte(header), &fm); err != nil {
		return FrontMatter{}, "", fmt.Errorf("%s: decode front matter: %w", path, err)
	}
	return fm, strings.TrimLeft(body, "\n"), nil
}

// sanitize keeps a label usable as a file name component.
func sanitize(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\t', '\n':
			return '-'
		}
		return r
	}, label)
}
