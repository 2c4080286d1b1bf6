package main

import (
	"io"
	"log/slog"

	"github.com/couchcryptid/quake-feed-search/internal/config"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	"github.com/couchcryptid/quake-feed-search/internal/output"
	"github.com/couchcryptid/quake-feed-search/internal/prompt"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Persistent flag values.
	dotenv    string
	feedDir   string
	feedExt   string
	reportOut string
	colorMode string

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "quakesearch",
		Short: "Search local earthquake feed files",
		Long: `quakesearch reads Atom/GeoRSS earthquake feed files from a directory,
filters their entries by date, time, magnitude, magnitude bucket or place,
and writes the matching entries to a text report.

Run without a subcommand to choose the search interactively.

Example usage:
  quakesearch                                  # interactive menu
  quakesearch search --bucket '>=2'            # magnitude classes 2 to 5
  quakesearch search --date-from 2025-01 --place Alaska
  quakesearch serve                            # HTTP search endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := prompt.New(a.stdin, a.stdout).Params()
			if err != nil {
				return invalidCriterion(err)
			}
			return a.runSearch(cmd.Context(), params)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.dotenv, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&a.feedDir, "dir", "", "feed directory (overrides QUAKE_FEED_DIR)")
	pf.StringVar(&a.feedExt, "ext", "", "feed file extension (overrides QUAKE_FEED_EXT)")
	pf.StringVar(&a.reportOut, "out", "", "report path (overrides QUAKE_REPORT_PATH)")
	pf.StringVar(&a.colorMode, "color", "auto", "color output: auto, always, or never")

	root.AddCommand(newSearchCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

// setup loads configuration, applies flag overrides and builds the logger and printer.
func (a *app) setup(cmd *cobra.Command) error {
	mode, err := output.ParseColorMode(a.colorMode)
	if err != nil {
		return &output.CLIError{Summary: "invalid --color value", Detail: err.Error(), ExitCode: output.ExitConfigError, Err: err}
	}
	a.printer = output.NewPrinterTo(a.stdout, a.stderr, output.ResolveColors(mode))

	if err := config.LoadDotEnv(a.dotenv); err != nil {
		return configError(err)
	}
	cfg, err := config.Load()
	if err != nil {
		return configError(err)
	}
	if a.feedDir != "" {
		cfg.FeedDir = a.feedDir
	}
	if a.feedExt != "" {
		cfg.FeedExt = a.feedExt
	}
	if a.reportOut != "" {
		cfg.ReportPath = a.reportOut
	}
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}
	a.cfg = cfg

	if cmd.Name() == "serve" {
		a.logger = observability.NewServiceLogger(cfg.LogLevel, cfg.LogFormat)
	} else {
		a.logger = observability.NewLogger(a.stderr, cfg.LogLevel, cfg.LogFormat)
	}
	a.logger.Debug("configuration loaded",
		"feed_dir", cfg.FeedDir,
		"feed_ext", cfg.FeedExt,
		"report_path", cfg.ReportPath,
		"kafka_enabled", cfg.KafkaEnabled(),
	)
	return nil
}

func configError(err error) error {
	return &output.CLIError{
		Summary:    "invalid configuration",
		Detail:     err.Error(),
		Suggestion: "check the QUAKE_*, LOG_*, and KAFKA_* environment variables",
		ExitCode:   output.ExitConfigError,
		Err:        err,
	}
}
