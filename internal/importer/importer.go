// Package importer resolves statement plugins by name and finds the files
// they should parse.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cleared-dev/betterment/internal/betterment"
	"github.com/cleared-dev/betterment/internal/diag"
	"github.com/cleared-dev/betterment/internal/model"
)

// ErrUnknownPlugin is returned by Open for names nothing was registered under.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Plugin parses statement files for one institution.
type Plugin interface {
	Name() string
	Parse(path string, report diag.Reporter) (*model.Statement, error)
}

// Factory builds a Plugin from host settings.
type Factory func(settings map[string]string, log *zap.Logger) (Plugin, error)

// Registry holds named plugin factories.
type Registry struct {
	factories map[string]Factory
}

// FileInfo describes a CSV file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Panics on duplicate name.
func (r *Registry) Register(name string, f Factory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate plugin name: " + key)
	}
	r.factories[key] = f
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open builds the plugin registered under name.
func (r *Registry) Open(name string, settings map[string]string, log *zap.Logger) (Plugin, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	return f(settings, log)
}

// DefaultRegistry returns a registry with all built-in plugins.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(betterment.Name, func(settings map[string]string, log *zap.Logger) (Plugin, error) {
		p, err := betterment.New(settings, log)
		if err != nil {
			return nil, err
		}
		return bettermentPlugin{p}, nil
	})
	return r
}

type bettermentPlugin struct {
	*betterment.Plugin
}

func (b bettermentPlugin) Parse(path string, report diag.Reporter) (*model.Statement, error) {
	fp := b.Parser(path)
	fp.Report = report
	return fp.Parse()
}

// Scan returns the CSV files named by paths. Directories contribute every
// *.csv directly inside them; plain files are taken as given.
func Scan(paths ...string) ([]FileInfo, error) {
	var files []FileInfo
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, FileInfo{Name: info.Name(), Path: p, Size: info.Size()})
			continue
		}
		found, err := scanDir(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func scanDir(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}
