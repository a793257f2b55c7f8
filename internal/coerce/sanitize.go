// Package coerce cleans raw statement cells and converts them to typed values.
package coerce

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
)

// Sanitizer removes currency symbols from raw cell text.
type Sanitizer struct {
	symbols []string // longest first
}

// NewSanitizer returns a Sanitizer that strips "$" and the grapheme of every
// given ISO 4217 code. Graphemes containing letters ("kr", "R") are ignored
// since removing them would corrupt memo text.
func NewSanitizer(currencies ...string) *Sanitizer {
	symbols := []string{"$"}
	for _, code := range currencies {
		cur := money.GetCurrency(strings.ToUpper(code))
		if cur == nil || !isSymbol(cur.Grapheme) || contains(symbols, cur.Grapheme) {
			continue
		}
		symbols = append(symbols, cur.Grapheme)
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		return len(symbols[i]) > len(symbols[j])
	})
	return &Sanitizer{symbols: symbols}
}

// Cell strips currency symbols from one cell. Sign, digits and all other
// text are left untouched, so applying it twice is the same as once.
func (s *Sanitizer) Cell(v string) string {
	for {
		out := v
		for _, sym := range s.symbols {
			out = strings.ReplaceAll(out, sym, "")
		}
		if out == v {
			return out
		}
		v = out
	}
}

// Row sanitizes every cell of a row into a new slice.
func (s *Sanitizer) Row(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = s.Cell(c)
	}
	return out
}

func isSymbol(g string) bool {
	if g == "" {
		return false
	}
	for _, r := range g {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
