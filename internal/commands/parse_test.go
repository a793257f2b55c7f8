package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cleared-dev/betterment/internal/importer"
)

const dataDir = "../../testdata"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type lineJSON struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Date   string `json:"date"`
	Memo   string `json:"memo"`
	Amount string `json:"amount"`
}

type statementJSON struct {
	BankID       string     `json:"bank_id"`
	AccountID    string     `json:"account_id"`
	Currency     string     `json:"currency"`
	FilterZeros  bool       `json:"filter_zeros"`
	Lines        []lineJSON `json:"lines"`
	StartBalance *string    `json:"start_balance"`
	EndBalance   *string    `json:"end_balance"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
}

func decodeAll(t *testing.T, out string) []statementJSON {
	t.Helper()
	var stmts []statementJSON
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var s statementJSON
		require.NoError(t, dec.Decode(&s))
		stmts = append(stmts, s)
	}
	return stmts
}

func TestParse_Defaults(t *testing.T) {
	out, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"))
	require.NoError(t, err)

	stmts := decodeAll(t, out)
	require.Len(t, stmts, 1)
	s := stmts[0]
	assert.Equal(t, "Betterment", s.BankID)
	assert.Empty(t, s.AccountID)
	assert.Equal(t, "USD", s.Currency)
	assert.True(t, s.FilterZeros)
	assert.Len(t, s.Lines, 5)
	require.NotNil(t, s.StartBalance)
	assert.Equal(t, "0", *s.StartBalance)
	assert.Equal(t, "817.44", *s.EndBalance)
	assert.Equal(t, "2015-09-22 10:15:02-04:00", s.StartDate)
	assert.Equal(t, "2015-09-25 16:00:00-04:00", s.EndDate)

	first := s.Lines[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "Market Change", first.Memo)
	assert.Equal(t, "3.32", first.Amount)
	assert.Len(t, first.ID, 64)
}

func TestParse_Flags(t *testing.T) {
	out, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"),
		"--bank", "CustomBank", "--account", "12345", "--filter-zeros=false")
	require.NoError(t, err)

	s := decodeAll(t, out)[0]
	assert.Equal(t, "CustomBank", s.BankID)
	assert.Equal(t, "12345", s.AccountID)
	assert.False(t, s.FilterZeros)
	assert.Len(t, s.Lines, 7)
}

func TestParse_EmptyStatementHasNullBalances(t *testing.T) {
	out, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions_header.csv"))
	require.NoError(t, err)

	s := decodeAll(t, out)[0]
	assert.Empty(t, s.Lines)
	assert.Nil(t, s.StartBalance)
	assert.Nil(t, s.EndBalance)
	assert.Empty(t, s.StartDate)
}

func TestParse_ConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("betterment:\n  account: \"999\"\n  filter_zeros: no\n  bank: FromFile\n"), 0o644))

	out, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"),
		"--config", cfg, "--bank", "FromFlag")
	require.NoError(t, err)

	s := decodeAll(t, out)[0]
	assert.Equal(t, "FromFlag", s.BankID)
	assert.Equal(t, "999", s.AccountID)
	assert.False(t, s.FilterZeros)
	assert.Len(t, s.Lines, 7)
}

func TestParse_PositionalLayout(t *testing.T) {
	out, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions_positional.csv"), "--layout", "positional")
	require.NoError(t, err)

	s := decodeAll(t, out)[0]
	assert.Len(t, s.Lines, 5)
	assert.Equal(t, "817.44", *s.EndBalance)
}

func TestParse_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"transactions.csv", "transactions_positive.csv"} {
		data, err := os.ReadFile(filepath.Join(dataDir, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	out, _, err := execute(t, "parse", dir)
	require.NoError(t, err)

	stmts := decodeAll(t, out)
	require.Len(t, stmts, 2)
	assert.Equal(t, "0", *stmts[0].StartBalance)
	assert.Equal(t, "1000", *stmts[1].StartBalance)
}

func TestParse_Rejects(t *testing.T) {
	path := filepath.Join(dataDir, "transactions_dirty.csv")
	var stdout, stderr bytes.Buffer
	opts := parseOptions{plugin: "betterment", rejects: true}

	err := runParse(&stdout, &stderr, importer.DefaultRegistry(), opts, nil, zap.NewNop(), []string{path})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# "+path, lines[0])
	assert.Equal(t, "row,line,kind,error", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "3,3,malformed,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[4], "5,5,malformed,"), lines[4])
}

func TestParse_NoRejectsWhenClean(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := parseOptions{plugin: "betterment", rejects: true}

	err := runParse(&stdout, &stderr, importer.DefaultRegistry(), opts,
		map[string]string{"filter_zeros": "false"}, zap.NewNop(),
		[]string{filepath.Join(dataDir, "transactions.csv")})
	require.NoError(t, err)
	assert.Empty(t, stderr.String())
}

func TestParse_UnknownPlugin(t *testing.T) {
	_, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"), "--plugin", "chase")
	assert.ErrorIs(t, err, importer.ErrUnknownPlugin)
}

func TestParse_BadSetting(t *testing.T) {
	_, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"), "--charset", "klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown charset")
}

func TestParse_MissingConfig(t *testing.T) {
	_, _, err := execute(t, "parse", filepath.Join(dataDir, "transactions.csv"),
		"--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_PluginFlagListsRegistered(t *testing.T) {
	cmd := newParseCommand()
	usage := cmd.Flags().Lookup("plugin").Usage
	assert.Contains(t, usage, "betterment")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "betterment dev (commit: none, built: unknown)\n", out)
}
