package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindExpected(t *testing.T) {
	assert.True(t, KindHeader.Expected())
	assert.True(t, KindZero.Expected())
	assert.True(t, KindPending.Expected())
	assert.False(t, KindMalformed.Expected())
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	report := Reporter(rec.Report)
	report(Diagnostic{Row: 1, Line: 1, Kind: KindHeader})
	report(Diagnostic{Row: 3, Line: 3, Kind: KindPending})
	report(Diagnostic{Row: 4, Line: 4, Kind: KindPending})

	require.Len(t, rec.All(), 3)
	assert.Equal(t, 2, rec.Count(KindPending))
	assert.Equal(t, 0, rec.Count(KindMalformed))
	assert.Equal(t, 3, rec.All()[1].Row)
}

func TestTee(t *testing.T) {
	var a, b Recorder
	report := Tee(a.Report, b.Report, Discard)
	report(Diagnostic{Row: 2, Kind: KindZero})
	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}

func TestString(t *testing.T) {
	d := Diagnostic{Row: 5, Line: 6, Kind: KindMalformed, Err: errors.New("invalid date: \"x\"")}
	assert.Equal(t, `row 5 (line 6): malformed: invalid date: "x"`, d.String())
	assert.Equal(t, "row 2 (line 2): zero", Diagnostic{Row: 2, Line: 2, Kind: KindZero}.String())
}

func TestWriteCSV(t *testing.T) {
	items := []Diagnostic{
		{Row: 3, Line: 3, Kind: KindPending},
		{Row: 4, Line: 5, Kind: KindMalformed, Err: errors.New("invalid amount: \"abc\"")},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items))

	want := "row,line,kind,error\n" +
		"3,3,pending,\n" +
		"4,5,malformed,\"invalid amount: \"\"abc\"\"\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, Header+"\n", buf.String())
}
