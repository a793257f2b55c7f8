package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a transaction time as read from a statement cell.
// Zoned is false when the source text carried no UTC offset; such times are
// stored as UTC.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool { return t.Time.IsZero() }

// Before reports whether t is earlier than u.
func (t Timestamp) Before(u Timestamp) bool { return t.Time.Before(u.Time) }

// After reports whether t is later than u.
func (t Timestamp) After(u Timestamp) bool { return t.Time.After(u.Time) }

// Day returns the calendar date in the timestamp's own offset, e.g. "2015-09-22".
func (t Timestamp) Day() string { return t.Time.Format("2006-01-02") }

// String returns the canonical form "2006-01-02 15:04:05[.ffffff][-07:00]".
// Microseconds appear only when non-zero and the offset only when zoned.
func (t Timestamp) String() string {
	var b strings.Builder
	b.WriteString(t.Time.Format("2006-01-02 15:04:05"))
	if us := t.Time.Nanosecond() / 1000; us != 0 {
		fmt.Fprintf(&b, ".%06d", us)
	}
	if t.Zoned {
		b.WriteString(t.Time.Format("-07:00"))
	}
	return b.String()
}

// MarshalJSON encodes the canonical string form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
