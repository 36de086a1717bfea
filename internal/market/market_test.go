package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		code     string
		name     string
		exchange string
	}{
		{"ss", "不锈钢", "SHFE"},
		{"SS", "不锈钢", "SHFE"},
		{" rb ", "螺纹钢", "SHFE"},
		{"sc", "原油", "INE"},
		{"y", "豆油", "DCE"},
		{"ta", "PTA", "CZCE"},
		{"lc", "碳酸锂", "GFEX"},
		{"if", "沪深300指数", "CFFEX"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s, err := Lookup(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name)
			assert.Equal(t, tt.exchange, s.Exchange)
			assert.Equal(t, Normalize(tt.code), s.Code)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	s, err := Lookup("XYZ")
	require.ErrorIs(t, err, ErrUnknownSymbol)
	assert.Equal(t, "xyz", s.Code)
	assert.Equal(t, UnknownExchange, s.Exchange)
	assert.Equal(t, "xyz", DisplayName("XYZ"))
}

func TestSymbolsSorted(t *testing.T) {
	syms := Symbols()
	require.Len(t, syms, 74)
	for i := 1; i < len(syms); i++ {
		assert.Less(t, syms[i-1].Code, syms[i].Code)
	}
}

const sampleJSONP = `/*<script>location.href='//sina.com';</script>*/
var _=([{"d":"2024-05-06","o":"13900","h":"14010","l":"13850","c":"13975","v":"120345","p":"210000","s":"13950"},
{"d":"2024-05-07","o":"13980","h":"14100","l":"13960","c":"14080","v":"130222","p":"212400","s":"14040"},
{"d":"2024-05-08","o":"14080","h":"14120","l":"14000","c":"14015","v":"110876","p":"209800","s":"14060"}]);`

func TestFetch(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		fmt.Fprint(w, sampleJSONP)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{BaseURL: srv.URL + "/kline", Days: 2})
	out, err := f.Fetch(context.Background(), "SS")
	require.NoError(t, err)
	assert.Equal(t, "SS0", gotSymbol)

	var rep Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "ss", rep.Symbol)
	assert.Equal(t, "不锈钢", rep.Name)
	assert.Equal(t, "SHFE", rep.Exchange)
	require.Len(t, rep.Bars, 2)
	assert.Equal(t, "2024-05-07", rep.Bars[0].Date)
	assert.Equal(t, 14015.0, rep.Latest.Close)
	assert.Equal(t, 209800.0, rep.Latest.Hold)
}

func TestFetchUnknownSymbolSkipsUpstream(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	_, err := NewFetcher(FetcherConfig{BaseURL: srv.URL}).Fetch(context.Background(), "zz")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	assert.False(t, called)
}

func TestFetchUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusBadGateway, "", "status 502"},
		{"empty array", http.StatusOK, "var _=([]);", "no data returned"},
		{"not json", http.StatusOK, "<html>blocked</html>", "unexpected response"},
		{"bad number", http.StatusOK, `[{"d":"2024-05-06","c":"n/a"}]`, `parse number "n/a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewFetcher(FetcherConfig{BaseURL: srv.URL}).Fetch(context.Background(), "rb")
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q lacks %q", err, tt.wantErr)
		})
	}
}
