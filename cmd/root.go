package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KaramelBytes/profile_data/internal/analysis"
	cfgpkg "github.com/KaramelBytes/profile_data/internal/config"
	plog "github.com/KaramelBytes/profile_data/internal/log"
	"github.com/KaramelBytes/profile_data/internal/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const usageLine = "Usage: profile_data <file.csv>"

// UsageError reports missing or extra command-line arguments.
type UsageError struct {
	Args []string
}

func (e *UsageError) Error() string {
	if len(e.Args) == 0 {
		return "missing input file"
	}
	return fmt.Sprintf("expected exactly one input file, got %d arguments", len(e.Args))
}

// rootOptions holds flag values and the state built from them before a
// command runs.
type rootOptions struct {
	cfgFile    string
	delimiter  string
	nullValues []string
	logCfg     *plog.Config

	// Loaded configuration, flags applied.
	cfg    *cfgpkg.Global
	logger *slog.Logger
}

// NewRootCmd builds the profile_data command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{logCfg: plog.NewConfig()}

	rootCmd := &cobra.Command{
		Use:   "profile_data <file.csv>",
		Short: "Print a descriptive statistical profile of a CSV file",
		Long: `profile_data loads a delimited text file (first row = column headers) and prints
its shape, memory footprint, missing values, duplicate rows, column types,
numeric statistics, IQR outliers and low-cardinality categorical distributions.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &UsageError{Args: args}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	// Persistent global flags available to all subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "optional config file (YAML)")
	pf.StringVar(&opts.delimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' | '|' (default: tab for .tsv, comma otherwise)")
	pf.StringArrayVar(&opts.nullValues, "null-value", nil, "extra cell value to treat as missing (repeatable)")
	opts.logCfg.RegisterFlags(pf)
	if err := opts.logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage renders err as the one-line message shown before exiting.
func errorMessage(err error) string {
	var ue *UsageError
	var pe *table.ParseError
	switch {
	case errors.As(err, &ue):
		return fmt.Sprintf("Error: %v. %s", ue, usageLine)
	case errors.Is(err, table.ErrFileNotFound):
		return fmt.Sprintf("Error: %v", err)
	case errors.As(err, &pe):
		return fmt.Sprintf("Error reading file: %v", pe)
	}
	return fmt.Sprintf("Error: %v", err)
}

// setup loads configuration, applies flag overrides and builds the logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	c, err := cfgpkg.Load(o.cfgFile)
	if err != nil {
		return err
	}

	// Apply CLI overrides if provided
	f := cmd.Flags()
	if f.Changed("delimiter") {
		c.Delimiter = o.delimiter
	}
	if f.Changed("null-value") {
		c.NullValues = append(c.NullValues, o.nullValues...)
	}
	if f.Changed(o.logCfg.Flags.Level) {
		c.LogLevel = o.logCfg.Level
	}
	if f.Changed(o.logCfg.Flags.Format) {
		c.LogFormat = o.logCfg.Format
	}
	o.cfg = c

	o.logCfg.Level = c.LogLevel
	o.logCfg.Format = c.LogFormat
	h, err := o.logCfg.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.logger = slog.New(h).With("run", uuid.NewString())
	slog.SetDefault(o.logger)
	return nil
}

func (o *rootOptions) loaderOptions() (table.Options, error) {
	opt := table.DefaultOptions()
	delim, err := cfgpkg.ParseDelimiter(o.cfg.Delimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = delim
	opt.NullValues = o.cfg.NullValues
	return opt, nil
}

func (o *rootOptions) run(cmd *cobra.Command, path string) error {
	opt, err := o.loaderOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	t, err := table.LoadCSV(path, opt)
	if err != nil {
		o.logger.Debug("load failed", "file", path, "err", err)
		return err
	}
	defer t.Release()
	o.logger.Info("loaded table",
		"file", path,
		"rows", t.NumRows(),
		"cols", t.NumCols(),
		"elapsed", time.Since(start),
	)

	rep := analysis.Profile(t)
	o.logger.Debug("profiled table",
		"numeric", len(rep.Numeric),
		"categorical", len(rep.Categorical),
		"outlier_columns", len(rep.Outliers),
	)
	if _, err := fmt.Fprint(cmd.OutOrStdout(), rep.Text()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
