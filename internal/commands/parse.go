package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/betterment/internal/config"
	"github.com/cleared-dev/betterment/internal/diag"
	"github.com/cleared-dev/betterment/internal/importer"
)

type parseOptions struct {
	plugin      string
	configPath  string
	bank        string
	account     string
	filterZeros bool
	charset     string
	layout      string
	currency    string
	rejects     bool
	verbose     bool
}

func newParseCommand() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file|dir>...",
		Short: "Parse statement files and print them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), importer.DefaultRegistry(), opts, settings, log, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.plugin, "plugin", "betterment",
		"plugin to parse with ("+strings.Join(importer.DefaultRegistry().Names(), ", ")+")")
	f.StringVar(&opts.configPath, "config", "", "YAML settings file with one section per plugin")
	f.StringVar(&opts.bank, config.KeyBank, "", "bank id reported on the statement")
	f.StringVar(&opts.account, config.KeyAccount, "", "account id reported on the statement")
	f.BoolVar(&opts.filterZeros, "filter-zeros", true, "drop zero-amount rows")
	f.StringVar(&opts.charset, config.KeyCharset, "", "input character set")
	f.StringVar(&opts.layout, config.KeyLayout, "", "column layout: headered or positional")
	f.StringVar(&opts.currency, config.KeyCurrency, "", "statement currency code")
	f.BoolVar(&opts.rejects, "rejects", false, "write dropped rows as CSV to stderr")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	return cmd
}

// settings merges the config file section with any flags given explicitly.
func (o parseOptions) settings(cmd *cobra.Command) (map[string]string, error) {
	settings := map[string]string{}
	if o.configPath != "" {
		file, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		for k, v := range file.Section(o.plugin) {
			settings[k] = v
		}
	}

	flags := cmd.Flags()
	overrides := map[string]string{
		config.KeyBank:        o.bank,
		config.KeyAccount:     o.account,
		config.KeyCharset:     o.charset,
		config.KeyLayout:      o.layout,
		config.KeyCurrency:    o.currency,
		config.KeyFilterZeros: strconv.FormatBool(o.filterZeros),
	}
	for key, v := range overrides {
		name := key
		if key == config.KeyFilterZeros {
			name = "filter-zeros"
		}
		if flags.Changed(name) {
			settings[key] = v
		}
	}
	return settings, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runParse(stdout, stderr io.Writer, reg *importer.Registry, opts parseOptions, settings map[string]string, log *zap.Logger, paths []string) error {
	plugin, err := reg.Open(opts.plugin, settings, log)
	if err != nil {
		return err
	}

	files, err := importer.Scan(paths...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, f := range files {
		var rec diag.Recorder
		stmt, err := plugin.Parse(f.Path, rec.Report)
		if err != nil {
			return err
		}
		if err := enc.Encode(stmt); err != nil {
			return fmt.Errorf("writing statement: %w", err)
		}
		if opts.rejects && len(rec.All()) > 0 {
			fmt.Fprintf(stderr, "# %s\n", f.Path)
			if err := diag.WriteCSV(stderr, rec.All()); err != nil {
				return fmt.Errorf("writing rejects: %w", err)
			}
		}
	}
	return nil
}
