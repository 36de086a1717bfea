package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL serves continuous-contract daily bars.
const DefaultBaseURL = "https://stock2.finance.sina.com.cn/futures/api/jsonp.php/var%20_=/InnerFuturesNewService.getDailyKLine"

// DefaultDays is the number of most recent bars included in a report.
const DefaultDays = 30

// Bar is one daily bar.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Hold   float64 `json:"hold"`
	Settle float64 `json:"settle,omitempty"`
}

// Report is the serialized output of a fetch.
type Report struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	Exchange string    `json:"exchange"`
	Contract string    `json:"contract"`
	AsOf     time.Time `json:"as_of"`
	Latest   Bar       `json:"latest"`
	Bars     []Bar     `json:"bars"`
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	BaseURL string
	Days    int
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Fetcher retrieves recent daily bars for catalog symbols.
type Fetcher struct {
	baseURL string
	days    int
	client  *http.Client
	now     func() time.Time
}

// NewFetcher creates a Fetcher with defaults applied for unset fields.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultDays
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{baseURL: cfg.BaseURL, days: cfg.Days, client: client, now: time.Now}
}

// Fetch returns a JSON report of the most recent daily bars for symbol.
// It fails for symbols outside the catalog and when the upstream source is
// unavailable or returns no data.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (string, error) {
	sym, err := Lookup(symbol)
	if err != nil {
		return "", err
	}

	contract := strings.ToUpper(sym.Code) + "0"
	bars, err := f.dailyBars(ctx, contract)
	if err != nil {
		return "", fmt.Errorf("fetch %s daily bars: %w", sym.Code, err)
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("fetch %s daily bars: no data returned", sym.Code)
	}
	if len(bars) > f.days {
		bars = bars[len(bars)-f.days:]
	}

	rep := Report{
		Symbol:   sym.Code,
		Name:     sym.Name,
		Exchange: sym.Exchange,
		Contract: contract,
		AsOf:     f.now().UTC().Truncate(time.Second),
		Latest:   bars[len(bars)-1],
		Bars:     bars,
	}
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s report: %w", sym.Code, err)
	}
	return string(out), nil
}

// rawBar is the upstream wire form; every number arrives as a string.
type rawBar struct {
	D string `json:"d"`
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
	V string `json:"v"`
	P string `json:"p"`
	S string `json:"s"`
}

func (f *Fetcher) dailyBars(ctx context.Context, contract string) ([]Bar, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("symbol", contract)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; futuresdesk)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseBars(body)
}

// parseBars decodes a bar array, unwrapping a JSONP callback if present.
func parseBars(body []byte) ([]Bar, error) {
	start := bytes.IndexByte(body, '[')
	end := bytes.LastIndexByte(body, ']')
	if start < 0 || end < start {
		return nil, fmt.Errorf("unexpected response: %.80q", body)
	}

	var raw []rawBar
	if err := json.Unmarshal(body[start:end+1], &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	bars := make([]Bar, 0, len(raw))
	for _, r := range raw {
		b := Bar{Date: r.D}
		var err error
		for _, field := range []struct {
			dst *float64
			src string
		}{
			{&b.Open, r.O}, {&b.High, r.H}, {&b.Low, r.L}, {&b.Close, r.C},
			{&b.Volume, r.V}, {&b.Hold, r.P}, {&b.Settle, r.S},
		} {
			if field.src == "" {
				continue
			}
			if *field.dst, err = parseNumber(field.src); err != nil {
				return nil, fmt.Errorf("bar %s: %w", r.D, err)
			}
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}
