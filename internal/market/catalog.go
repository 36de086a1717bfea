// Package market provides the futures symbol catalog and recent daily price data.
package market

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrUnknownSymbol is returned when a symbol is not in the catalog.
var ErrUnknownSymbol = errors.New("unknown futures symbol")

// UnknownExchange is reported for symbols outside the catalog.
const UnknownExchange = "UNKNOWN"

// Symbol describes one futures variety.
type Symbol struct {
	// Code is the lower-case variety code, e.g. "ss".
	Code string `json:"code" yaml:"code"`
	// Name is the Chinese name, e.g. "不锈钢".
	Name string `json:"name" yaml:"name"`
	// Exchange is the listing exchange, e.g. "SHFE".
	Exchange string `json:"exchange" yaml:"exchange"`
}

var (
	catalogOnce sync.Once
	catalog     map[string]Symbol
	catalogErr  error
)

func loadCatalog() (map[string]Symbol, error) {
	catalogOnce.Do(func() {
		var byExchange map[string]map[string]string
		if err := yaml.Unmarshal(catalogYAML, &byExchange); err != nil {
			catalogErr = fmt.Errorf("parse symbol catalog: %w", err)
			return
		}
		catalog = make(map[string]Symbol)
		for exchange, names := range byExchange {
			for code, name := range names {
				code = strings.ToLower(code)
				catalog[code] = Symbol{Code: code, Name: name, Exchange: exchange}
			}
		}
	})
	return catalog, catalogErr
}

// Normalize lower-cases and trims a symbol code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Lookup returns the catalog entry for code, case-insensitively.
func Lookup(code string) (Symbol, error) {
	cat, err := loadCatalog()
	if err != nil {
		return Symbol{}, err
	}
	code = Normalize(code)
	s, ok := cat[code]
	if !ok {
		return Symbol{Code: code, Name: code, Exchange: UnknownExchange}, fmt.Errorf("%w: %q", ErrUnknownSymbol, code)
	}
	return s, nil
}

// DisplayName returns the catalog name for code, or code itself when unknown.
func DisplayName(code string) string {
	s, err := Lookup(code)
	if err != nil {
		return Normalize(code)
	}
	return s.Name
}

// Symbols returns every catalog entry sorted by code.
func Symbols() []Symbol {
	cat, err := loadCatalog()
	if err != nil {
		return nil
	}
	out := make([]Symbol, 0, len(cat))
	for _, s := range cat {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
