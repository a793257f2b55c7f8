// Package identity derives stable transaction ids for statements that carry
// no native transaction identifier.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/betterment/internal/model"
)

// EmptyID is the id of a transaction with no date, memo or amount.
const EmptyID = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Fields are the hashed parts of a transaction. A zero Date, an empty Memo and
// an invalid Amount are unset and contribute no bytes.
type Fields struct {
	Date   model.Timestamp
	Memo   string
	Amount decimal.NullDecimal
}

// Stable returns the lowercase hex SHA-256 of the canonical date, the memo and
// the canonical amount (see Amount), fed in that order.
//
// Two transactions with the same date, memo and amount get the same id.
func Stable(f Fields) string {
	h := sha256.New()
	if !f.Date.IsZero() {
		io.WriteString(h, f.Date.String())
	}
	io.WriteString(h, f.Memo)
	if f.Amount.Valid {
		io.WriteString(h, Amount(f.Amount.Decimal))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Amount returns the canonical text of an amount: its digits at the scale it
// was written with, so "800.00" stays "800.00" and "-3.1" stays "-3.1".
func Amount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// ForLine returns the stable id for a parsed line.
func ForLine(l model.Line) string {
	return Stable(Fields{
		Date:   l.Date,
		Memo:   l.Memo,
		Amount: decimal.NewNullDecimal(l.Amount),
	})
}
