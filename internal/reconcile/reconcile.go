// Package reconcile derives statement balances and date bounds from the
// per-line ending balances.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/betterment/internal/model"
)

// Balances sets StartBalance, EndBalance, StartDate and EndDate from the
// chronologically earliest and latest lines. When several lines share the
// earliest (or latest) date, the first one in file order wins.
//
// The source only records balances after each transaction, so the start
// balance is the earliest line's ending balance minus its amount.
//
// It returns false and leaves the statement untouched when there are no lines.
func Balances(stmt *model.Statement) bool {
	if len(stmt.Lines) == 0 {
		return false
	}

	first, last := stmt.Lines[0], stmt.Lines[0]
	for _, l := range stmt.Lines[1:] {
		if l.Date.Before(first.Date) {
			first = l
		}
		if l.Date.After(last.Date) {
			last = l
		}
	}

	start, end := first.Date, last.Date
	stmt.StartBalance = decimal.NewNullDecimal(first.EndBalance.Sub(first.Amount))
	stmt.EndBalance = decimal.NewNullDecimal(last.EndBalance)
	stmt.StartDate = &start
	stmt.EndDate = &end
	return true
}

// Result compares the reported end balance with one rebuilt from the lines.
type Result struct {
	Start      decimal.Decimal
	End        decimal.Decimal
	Calculated decimal.Decimal // Start plus every line amount
	Diff       decimal.Decimal // End minus Calculated
}

// OK reports whether the balances agree exactly.
func (r Result) OK() bool { return r.Diff.IsZero() }

func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("balance validated: start=%s end=%s", r.Start.StringFixed(2), r.End.StringFixed(2))
	}
	return fmt.Sprintf("balance mismatch: start=%s end=%s calculated=%s diff=%s",
		r.Start.StringFixed(2), r.End.StringFixed(2), r.Calculated.StringFixed(2), r.Diff.StringFixed(2))
}

// Check rebuilds the end balance from the start balance and the line amounts.
// Rows dropped as pending make the two drift, so a mismatch is informational.
// The second return is false for statements that were never reconciled.
func Check(stmt *model.Statement) (Result, bool) {
	if !stmt.StartBalance.Valid || !stmt.EndBalance.Valid {
		return Result{}, false
	}
	calc := stmt.StartBalance.Decimal
	for _, l := range stmt.Lines {
		calc = calc.Add(l.Amount)
	}
	return Result{
		Start:      stmt.StartBalance.Decimal,
		End:        stmt.EndBalance.Decimal,
		Calculated: calc,
		Diff:       stmt.EndBalance.Decimal.Sub(calc),
	}, true
}
