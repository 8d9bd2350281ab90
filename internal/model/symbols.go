package model

import (
	"sort"
	"strings"
)

// SymbolSet is the read-only allow-list of tickers a portfolio may contain.
type SymbolSet struct {
	symbols map[string]struct{}
}

func NewSymbolSet(symbols []string) SymbolSet {
	set := SymbolSet{symbols: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		s = NormalizeSymbol(s)
		if s == "" {
			continue
		}
		set.symbols[s] = struct{}{}
	}
	return set
}

func (s SymbolSet) Contains(symbol string) bool {
	_, ok := s.symbols[symbol]
	return ok
}

func (s SymbolSet) List() []string {
	res := make([]string, 0, len(s.symbols))
	for symbol := range s.symbols {
		res = append(res, symbol)
	}
	sort.Strings(res)
	return res
}

func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
