// Package config decodes plugin settings supplied by the host.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// Recognized setting keys.
const (
	KeyCharset     = "charset"
	KeyBank        = "bank"
	KeyAccount     = "account"
	KeyFilterZeros = "filter_zeros"
	KeyLayout      = "layout"
	KeyCurrency    = "currency"
)

// Layout selects how CSV columns are located.
type Layout string

const (
	// LayoutHeadered finds columns by header name.
	LayoutHeadered Layout = "headered"
	// LayoutPositional uses fixed column positions and drops row 1.
	LayoutPositional Layout = "positional"
)

var (
	ErrUnknownCharset  = errors.New("unknown charset")
	ErrUnknownLayout   = errors.New("unknown layout")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Settings configure one plugin instance.
type Settings struct {
	Charset     string
	Bank        string
	Account     string // empty when unset
	FilterZeros bool
	Layout      Layout
	Currency    string
}

// Default returns the settings used when the host supplies none.
func Default() Settings {
	return Settings{
		Charset:     "utf-8",
		Bank:        "Betterment",
		FilterZeros: true,
		Layout:      LayoutHeadered,
		Currency:    "USD",
	}
}

// FromMap applies host settings over Default. Unknown keys are ignored.
func FromMap(m map[string]string) (Settings, error) {
	s := Default()
	if v, ok := m[KeyCharset]; ok {
		s.Charset = v
	}
	if v, ok := m[KeyBank]; ok {
		s.Bank = v
	}
	if v, ok := m[KeyAccount]; ok {
		s.Account = v
	}
	if v, ok := m[KeyFilterZeros]; ok {
		s.FilterZeros = ParseBool(v)
	}
	if v, ok := m[KeyLayout]; ok {
		s.Layout = Layout(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := m[KeyCurrency]; ok {
		s.Currency = strings.ToUpper(strings.TrimSpace(v))
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks charset, layout and currency.
func (s Settings) Validate() error {
	if _, err := s.Encoding(); err != nil {
		return err
	}
	switch s.Layout {
	case LayoutHeadered, LayoutPositional:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayout, s.Layout)
	}
	if money.GetCurrency(s.Currency) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, s.Currency)
	}
	return nil
}

// Encoding resolves Charset to a text encoding. "utf-8-sig" is accepted as
// an alias of UTF-8.
func (s Settings) Encoding() (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(s.Charset))
	if name == "utf-8-sig" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, s.Charset)
	}
	return enc, nil
}

// ParseBool reports whether v is one of yes, true, t or 1, ignoring case.
func ParseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "t", "1":
		return true
	}
	return false
}

// File holds settings sections keyed by plugin name.
type File map[string]map[string]string

// Section returns the settings for one plugin, or an empty map.
func (f File) Section(name string) map[string]string {
	if s, ok := f[name]; ok && s != nil {
		return s
	}
	return map[string]string{}
}

// Load reads a YAML settings file from disk.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if f == nil {
		f = File{}
	}
	return f, nil
}
