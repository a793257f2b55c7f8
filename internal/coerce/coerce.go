package coerce

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/betterment/internal/model"
)

var (
	// ErrAmount is returned for cells that are not a decimal number.
	ErrAmount = errors.New("invalid amount")
	// ErrDate is returned for cells matching none of the accepted date formats.
	ErrDate = errors.New("invalid date")
)

// DateFormat is one accepted layout for a date cell.
type DateFormat struct {
	Layout string
	Zoned  bool // layout carries a UTC offset
}

// DateFormats is an ordered list of layouts; the first one that parses wins.
type DateFormats []DateFormat

// DefaultDateFormats are the layouts seen in Betterment exports. The zoned
// forms come first; the naive layout is the legacy export and also accepts
// fractional seconds.
var DefaultDateFormats = DateFormats{
	{Layout: "2006-01-02 15:04:05 -0700", Zoned: true},
	{Layout: "2006-01-02 15:04:05 -07:00", Zoned: true},
	{Layout: "2006-01-02 15:04:05-07:00", Zoned: true},
	{Layout: "2006-01-02 15:04:05-0700", Zoned: true},
	{Layout: "2006-01-02 15:04:05"},
}

// Parse converts a date cell using the first matching layout.
func (f DateFormats) Parse(s string) (model.Timestamp, error) {
	v := strings.TrimSpace(s)
	for _, df := range f {
		t, err := time.Parse(df.Layout, v)
		if err != nil {
			continue
		}
		return model.Timestamp{Time: t, Zoned: df.Zoned}, nil
	}
	return model.Timestamp{}, fmt.Errorf("%w: %q", ErrDate, s)
}

// Amount parses a cell as an exact decimal.
func Amount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmount, s)
	}
	return d, nil
}

// Memo passes memo text through unchanged.
func Memo(s string) string { return s }

// zeroTolerance absorbs float rounding in upstream amount text.
var zeroTolerance = decimal.New(1, -6)

// IsZero reports whether an amount is within 1e-6 of zero.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(zeroTolerance)
}
