// Package diag carries the reasons rows were dropped while parsing a statement.
package diag

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind classifies why a row produced no transaction.
type Kind string

const (
	// KindHeader is the positional header row, dropped by ordinal.
	KindHeader Kind = "header"
	// KindZero is a zero-amount row removed by the zero filter.
	KindZero Kind = "zero"
	// KindPending is a row with a blank or non-numeric ending balance.
	KindPending Kind = "pending"
	// KindMalformed is a row whose date or amount could not be read.
	KindMalformed Kind = "malformed"
)

// Expected reports whether rows of this kind are routine and not data errors.
func (k Kind) Expected() bool { return k != KindMalformed }

// Diagnostic describes one dropped row.
type Diagnostic struct {
	Row  int // 1-based record ordinal, header is 1
	Line int // line in the source file
	Kind Kind
	Err  error // set for malformed rows
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("row %d (line %d): %s: %v", d.Row, d.Line, d.Kind, d.Err)
	}
	return fmt.Sprintf("row %d (line %d): %s", d.Row, d.Line, d.Kind)
}

// Reporter receives diagnostics as rows are dropped.
type Reporter func(Diagnostic)

// Discard is a Reporter that ignores everything.
func Discard(Diagnostic) {}

// Recorder collects diagnostics in the order they are reported.
type Recorder struct {
	items []Diagnostic
}

// Report appends d. Use it as a Reporter: rec.Report.
func (r *Recorder) Report(d Diagnostic) {
	r.items = append(r.items, d)
}

// All returns every recorded diagnostic.
func (r *Recorder) All() []Diagnostic { return r.items }

// Count returns how many diagnostics of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, d := range r.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Tee returns a Reporter that forwards to every given reporter.
func Tee(reporters ...Reporter) Reporter {
	return func(d Diagnostic) {
		for _, r := range reporters {
			r(d)
		}
	}
}

// Header is the CSV header written by WriteCSV.
const Header = "row,line,kind,error"

const (
	numFields = 4
	colRow    = 0
	colLine   = 1
	colKind   = 2
	colErr    = 3
)

// Marshal converts a Diagnostic to a CSV row.
func Marshal(d Diagnostic) []string {
	row := make([]string, numFields)
	row[colRow] = strconv.Itoa(d.Row)
	row[colLine] = strconv.Itoa(d.Line)
	row[colKind] = string(d.Kind)
	if d.Err != nil {
		row[colErr] = d.Err.Error()
	}
	return row
}

// WriteCSV writes diagnostics with a header row.
func WriteCSV(w io.Writer, items []Diagnostic) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, d := range items {
		if err := cw.Write(Marshal(d)); err != nil {
			return fmt.Errorf("writing diagnostic %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
