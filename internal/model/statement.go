package model

import (
	"github.com/shopspring/decimal"
)

// Line is one accepted transaction of a statement.
type Line struct {
	ID         string          `json:"id"`
	Row        int             `json:"row"` // 1-based source row, header is row 1
	Date       Timestamp       `json:"date"`
	Memo       string          `json:"memo"`
	Amount     decimal.Decimal `json:"amount"`
	EndBalance decimal.Decimal `json:"end_balance"` // balance right after this line posted
}

// Statement is the parsed result handed back to the host.
//
// StartBalance, EndBalance, StartDate and EndDate are either all unset (no
// lines) or all set by the reconciler.
type Statement struct {
	BankID       string              `json:"bank_id"`
	AccountID    string              `json:"account_id,omitempty"`
	Currency     string              `json:"currency"`
	FilterZeros  bool                `json:"filter_zeros"`
	Lines        []Line              `json:"lines"` // file order, not necessarily chronological
	StartBalance decimal.NullDecimal `json:"start_balance"`
	EndBalance   decimal.NullDecimal `json:"end_balance"`
	StartDate    *Timestamp          `json:"start_date,omitempty"`
	EndDate      *Timestamp          `json:"end_date,omitempty"`
}

// NewStatement returns an empty statement for a bank.
func NewStatement(bankID string) *Statement {
	return &Statement{BankID: bankID, Lines: []Line{}}
}

// Reconciled reports whether the derived balance and date fields are set.
func (s *Statement) Reconciled() bool {
	return s.StartDate != nil
}
