package betterment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/betterment/internal/config"
)

// ErrMissingColumn is returned when a header lacks a mapped column.
var ErrMissingColumn = errors.New("missing column")

// Field is a Line field filled from a CSV cell.
type Field int

const (
	FieldDate Field = iota
	FieldMemo
	FieldAmount
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldMemo:
		return "memo"
	case FieldAmount:
		return "amount"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Column locates a cell by header name, or by zero-based position when Name
// is empty.
type Column struct {
	Name  string
	Index int
}

func (c Column) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%q", c.Name)
	}
	return fmt.Sprintf("#%d", c.Index)
}

// Mapping assigns one column to one field.
type Mapping struct {
	Field  Field
	Column Column
}

// Layout describes where a Betterment export keeps its values. Row 1 is
// always a header: headered layouts read column names from it, positional
// layouts drop it.
type Layout struct {
	Headered bool
	Fields   []Mapping // applied in order, first failure drops the row
	Balance  Column    // ending balance after the transaction
}

// HeaderedLayout matches the current export with named columns.
var HeaderedLayout = Layout{
	Headered: true,
	Fields: []Mapping{
		{FieldDate, Column{Name: "Date Completed"}},
		{FieldMemo, Column{Name: "Transaction Description"}},
		{FieldAmount, Column{Name: "Amount"}},
	},
	Balance: Column{Name: "Ending Balance"},
}

// PositionalLayout matches the legacy export read by column position.
var PositionalLayout = Layout{
	Fields: []Mapping{
		{FieldDate, Column{Index: 4}},
		{FieldMemo, Column{Index: 1}},
		{FieldAmount, Column{Index: 2}},
	},
	Balance: Column{Index: 3},
}

// LayoutFor returns the layout selected by a settings value.
func LayoutFor(l config.Layout) (Layout, error) {
	switch l {
	case config.LayoutHeadered:
		return HeaderedLayout, nil
	case config.LayoutPositional:
		return PositionalLayout, nil
	}
	return Layout{}, fmt.Errorf("%w: %q", config.ErrUnknownLayout, l)
}

// columns are resolved cell indices: one per Fields entry, then the balance.
type columns struct {
	fields  []int
	balance int
	width   int // cells a row needs
}

// positions returns indices for a positional layout.
func (l Layout) positions() columns {
	cols := columns{fields: make([]int, len(l.Fields)), balance: l.Balance.Index}
	for i, m := range l.Fields {
		cols.fields[i] = m.Column.Index
	}
	cols.setWidth()
	return cols
}

// resolve maps header names to indices. The first of duplicate names wins.
func (l Layout) resolve(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	lookup := func(c Column) (int, error) {
		i, ok := index[c.Name]
		if !ok {
			return 0, fmt.Errorf("%w %s", ErrMissingColumn, c)
		}
		return i, nil
	}

	cols := columns{fields: make([]int, len(l.Fields))}
	for i, m := range l.Fields {
		idx, err := lookup(m.Column)
		if err != nil {
			return columns{}, err
		}
		cols.fields[i] = idx
	}
	bal, err := lookup(l.Balance)
	if err != nil {
		return columns{}, err
	}
	cols.balance = bal
	cols.setWidth()
	return cols, nil
}

func (c *columns) setWidth() {
	w := c.balance
	for _, i := range c.fields {
		if i > w {
			w = i
		}
	}
	c.width = w + 1
}
