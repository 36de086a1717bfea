package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <h2 class="result__title">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fnews.example.com%2Fss-rally&amp;rut=abc">不锈钢 期货 <b>反弹</b></a>
  </h2>
  <a class="result__snippet" href="#">钢厂减产, 库存下降.</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://example.org/nickel">Nickel supports stainless</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://example.org/third">Third</a>
</div>
<div class="result--ad"><a class="result__a" href="https://ads.example">Ad</a></div>
</body></html>`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{Endpoint: srv.URL + "/html/"})
}

func TestResultsParsesPage(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		io.WriteString(w, samplePage)
	})

	results, err := c.Results(context.Background(), "不锈钢 期货", 10)
	require.NoError(t, err)
	assert.Equal(t, "不锈钢 期货", gotQuery)
	require.Len(t, results, 3)

	assert.Equal(t, "https://news.example.com/ss-rally", results[0].URL)
	assert.Equal(t, "不锈钢 期货 反弹", results[0].Title)
	assert.Equal(t, "钢厂减产, 库存下降.", results[0].Snippet)
	assert.Equal(t, "https://example.org/nickel", results[1].URL)
	assert.Empty(t, results[1].Snippet)
}

func TestSearchRespectsCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, samplePage)
	})

	out := c.Search(context.Background(), "ss", 1)
	assert.Contains(t, out, "1. 不锈钢 期货 反弹")
	assert.NotContains(t, out, "2. ")
}

func TestSearchDegradesGracefully(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    "Search unavailable",
		},
		{
			name:    "no results",
			handler: func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "<html></html>") },
			want:    "No results found for: ss",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			assert.Contains(t, c.Search(context.Background(), "ss", 0), tt.want)
		})
	}
}

func TestSearchUnreachable(t *testing.T) {
	c := NewClient(Config{Endpoint: "http://127.0.0.1:1/html/"})
	assert.Contains(t, c.Search(context.Background(), "ss", 5), "Search unavailable")
}

func TestSearchEmptyQuery(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, "Search skipped: empty query.", c.Search(context.Background(), "  ", 5))
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/a", "https://example.com/a"},
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fb&rut=1", "https://example.com/b"},
		{"https://duckduckgo.com/l/?x=1", "https://duckduckgo.com/l/?x=1"},
	}
	for _, tt := range tests {
		if got := unwrapRedirect(tt.in); got != tt.want {
			t.Errorf("unwrapRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
