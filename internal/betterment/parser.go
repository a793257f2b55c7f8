// Package betterment parses Betterment CSV transaction exports into
// reconciled statements.
package betterment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/cleared-dev/betterment/internal/coerce"
	"github.com/cleared-dev/betterment/internal/diag"
	"github.com/cleared-dev/betterment/internal/identity"
	"github.com/cleared-dev/betterment/internal/model"
	"github.com/cleared-dev/betterment/internal/reconcile"
)

// ErrShortRow is reported for rows with fewer cells than the layout needs.
var ErrShortRow = errors.New("row too short")

// Parser turns CSV rows into statement lines.
//
// Rows that are malformed (bad date, bad amount, too few cells) are reported
// to Report and skipped; they never fail the parse.
type Parser struct {
	Layout    Layout
	Sanitizer *coerce.Sanitizer
	Dates     coerce.DateFormats
	Report    diag.Reporter
}

// NewParser returns a Parser with the default sanitizer and date formats.
func NewParser(layout Layout, currency string) *Parser {
	return &Parser{
		Layout:    layout,
		Sanitizer: coerce.NewSanitizer(currency),
		Dates:     coerce.DefaultDateFormats,
		Report:    diag.Discard,
	}
}

// Parse appends one line per accepted row of r to stmt.Lines, then sets the
// statement's balances and date range. On error stmt must be discarded.
func (p *Parser) Parse(r io.Reader, stmt *model.Statement) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var cols columns
	if !p.Layout.Headered {
		cols = p.Layout.positions()
	}

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV row %d: %w", row, err)
		}
		lineNo, _ := cr.FieldPos(0)

		if row == 1 {
			if !p.Layout.Headered {
				p.report(diag.Diagnostic{Row: row, Line: lineNo, Kind: diag.KindHeader})
				continue
			}
			cols, err = p.Layout.resolve(rec)
			if err != nil {
				return fmt.Errorf("reading CSV header: %w", err)
			}
			continue
		}

		line, kind, err := p.parseRecord(rec, cols, stmt.FilterZeros)
		if kind != "" {
			p.report(diag.Diagnostic{Row: row, Line: lineNo, Kind: kind, Err: err})
			continue
		}
		line.Row = row
		stmt.Lines = append(stmt.Lines, line)
	}

	reconcile.Balances(stmt)
	return nil
}

// parseRecord builds a line from one data row. A non-empty kind means the
// row was dropped; err is set only for malformed rows.
func (p *Parser) parseRecord(rec []string, cols columns, filterZeros bool) (model.Line, diag.Kind, error) {
	if len(rec) < cols.width {
		return model.Line{}, diag.KindMalformed, fmt.Errorf("%w: %d cells, need %d", ErrShortRow, len(rec), cols.width)
	}
	cells := p.Sanitizer.Row(rec)

	var line model.Line
	for i, m := range p.Layout.Fields {
		v := cells[cols.fields[i]]
		switch m.Field {
		case FieldDate:
			ts, err := p.Dates.Parse(v)
			if err != nil {
				return model.Line{}, diag.KindMalformed, fmt.Errorf("parsing %s %s: %w", m.Field, m.Column, err)
			}
			line.Date = ts
		case FieldMemo:
			line.Memo = coerce.Memo(v)
		case FieldAmount:
			amt, err := coerce.Amount(v)
			if err != nil {
				return model.Line{}, diag.KindMalformed, fmt.Errorf("parsing %s %s: %w", m.Field, m.Column, err)
			}
			line.Amount = amt
		}
	}

	if filterZeros && coerce.IsZero(line.Amount) {
		return model.Line{}, diag.KindZero, nil
	}

	// Pending transactions have no settled balance yet.
	bal, err := coerce.Amount(cells[cols.balance])
	if err != nil {
		return model.Line{}, diag.KindPending, nil
	}
	line.EndBalance = bal

	line.ID = identity.ForLine(line)
	return line, "", nil
}

func (p *Parser) report(d diag.Diagnostic) {
	if p.Report != nil {
		p.Report(d)
	}
}
