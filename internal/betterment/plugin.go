package betterment

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/betterment/internal/config"
	"github.com/cleared-dev/betterment/internal/diag"
	"github.com/cleared-dev/betterment/internal/model"
	"github.com/cleared-dev/betterment/internal/reconcile"
)

// Name is the name hosts register and configure this plugin under.
const Name = "betterment"

// Plugin binds host settings to Betterment statement parsing.
type Plugin struct {
	settings config.Settings
	layout   Layout
	log      *zap.Logger
}

// New creates a Plugin from host settings. A nil logger discards logs.
func New(settings map[string]string, log *zap.Logger) (*Plugin, error) {
	s, err := config.FromMap(settings)
	if err != nil {
		return nil, fmt.Errorf("loading %s settings: %w", Name, err)
	}
	layout, err := LayoutFor(s.Layout)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Plugin{settings: s, layout: layout, log: log.Named(Name)}, nil
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return Name }

// Settings returns the decoded settings.
func (p *Plugin) Settings() config.Settings { return p.settings }

// Parser returns a parser for the statement file at path.
func (p *Plugin) Parser(path string) *FileParser {
	return &FileParser{plugin: p, path: path}
}

// FileParser parses one statement file.
type FileParser struct {
	plugin *Plugin
	path   string

	// Report, when set, also receives every dropped-row diagnostic.
	Report diag.Reporter
}

// Parse reads the file and returns the reconciled statement. Any file-level
// failure (open, charset, CSV syntax, header) returns no statement.
func (fp *FileParser) Parse() (*model.Statement, error) {
	s := fp.plugin.settings
	enc, err := s.Encoding()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fp.path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	stmt := model.NewStatement(s.Bank)
	stmt.AccountID = s.Account
	stmt.Currency = s.Currency
	stmt.FilterZeros = s.FilterZeros

	parser := NewParser(fp.plugin.layout, s.Currency)
	parser.Report = fp.plugin.logDiagnostic(fp.path)
	if fp.Report != nil {
		parser.Report = diag.Tee(parser.Report, fp.Report)
	}

	if err := parser.Parse(decode(f, enc), stmt); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fp.path, err)
	}

	log := fp.plugin.log.With(zap.String("file", fp.path))
	fields := []zap.Field{zap.Int("lines", len(stmt.Lines))}
	if res, ok := reconcile.Check(stmt); ok {
		if !res.OK() {
			log.Warn("statement balances do not add up",
				zap.Stringer("start", res.Start),
				zap.Stringer("end", res.End),
				zap.Stringer("calculated", res.Calculated),
				zap.Stringer("diff", res.Diff))
		}
		fields = append(fields, zap.Stringer("balance", res))
	}
	log.Debug("parsed statement", fields...)
	return stmt, nil
}

func (p *Plugin) logDiagnostic(path string) diag.Reporter {
	return func(d diag.Diagnostic) {
		fields := []zap.Field{
			zap.String("file", path),
			zap.Int("row", d.Row),
			zap.Int("line", d.Line),
			zap.String("kind", string(d.Kind)),
		}
		if d.Err != nil {
			fields = append(fields, zap.Error(d.Err))
		}
		if d.Kind.Expected() {
			p.log.Debug("row dropped", fields...)
			return
		}
		p.log.Warn("skipping malformed row", fields...)
	}
}

// decode converts r from enc to UTF-8. UTF-8 input is validated instead so
// that bad bytes fail the parse rather than turning into U+FFFD, and a
// leading byte-order mark is dropped.
func decode(r io.Reader, enc encoding.Encoding) io.Reader {
	if name, err := htmlindex.Name(enc); err == nil && name == "utf-8" {
		return transform.NewReader(r, transform.Chain(encoding.UTF8Validator, unicode.BOMOverride(transform.Nop)))
	}
	return enc.NewDecoder().Reader(r)
}
