package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/config"
	"github.com/Afrawles/ghactivity/internal/daterange"
	"github.com/Afrawles/ghactivity/internal/ghactivity"
	"github.com/Afrawles/ghactivity/internal/logger"
	"github.com/Afrawles/ghactivity/internal/report"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfgFile    string
	fromDate   string
	toDate     string
	period     string
	noProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "ghactivity",
	Short: "Summarise a GitHub user's activity as markdown",
	Long: `ghactivity reads a user's GitHub event feed for a date range, groups the
events by repository and by the issue, pull request or commit they touch, and
prints a markdown summary to stdout. JSON, HTML, CSV and XLSX reports can be
written alongside.

Example:
  ghactivity -f 2024-03-01 -t 2024-03-07
  ghactivity --period last-week --private --formats json,xlsx`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupConfig,
	RunE:              generateReport,
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .ghactivity.yaml in the working directory or $HOME)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (default info)")
	pf.String("log-format", "", "log format: console or json (default console)")
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))

	f := rootCmd.Flags()
	f.BoolP("private", "p", false, "include events from private repositories (needs a token)")
	f.StringVarP(&fromDate, "from-date", "f", "", "start date YYYY-MM-DD, inclusive (default today)")
	f.StringVarP(&toDate, "to-date", "t", "", "end date YYYY-MM-DD, inclusive (default today)")
	f.StringVar(&period, "period", "", "named period: today, yesterday, this-week, last-week, this-month, last-month, all-time")
	f.StringP("user", "u", "", "GitHub user name (default github.user_name or $GITHUB_USER)")
	f.StringSlice("formats", nil, "report files to write besides markdown: json, html, csv, xlsx")
	f.StringP("output", "o", "", "directory for report files (default reports)")
	f.Bool("strict", false, "abort on the first malformed event instead of skipping it")
	f.Int("max-pages", 0, "maximum feed pages to read (default 10)")
	f.Int("per-page", 0, "events per page, at most 100 (default 30)")
	f.String("base-url", "", "GitHub API base URL, for GitHub Enterprise")
	f.String("metrics-file", "", "write run metrics to this node-exporter textfile")
	f.BoolVar(&noProgress, "no-progress", false, "do not draw the progress spinner")

	rootCmd.MarkFlagsMutuallyExclusive("period", "from-date")
	rootCmd.MarkFlagsMutuallyExclusive("period", "to-date")

	for key, flag := range map[string]string{
		"github.private":   "private",
		"github.user_name": "user",
		"github.max_pages": "max-pages",
		"github.per_page":  "per-page",
		"github.base_url":  "base-url",
		"output.formats":   "formats",
		"output.directory": "output",
		"metrics_file":     "metrics-file",
		"strict":           "strict",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func setupConfig(cmd *cobra.Command, args []string) error {
	return config.Setup(viper.GetViper(), cfgFile)
}

// loadConfig reads the effective configuration and starts logging with it.
func loadConfig(validate bool) (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Named("cli").Debug().Str("path", used).Msg("using config file")
	}
	return cfg, nil
}

func generateReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	r, err := resolveRange(fromDate, toDate, period, time.Now())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := ghactivity.New(ctx, cfg)
	if err != nil {
		return err
	}

	idx, err := collect(ctx, app, r)
	if err != nil {
		if merr := app.WriteMetrics(); merr != nil {
			app.Logger.Warn().Err(merr).Msg("failed to write metrics")
		}
		return err
	}

	if err := report.WriteMarkdown(cmd.OutOrStdout(), idx); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}

	exportBar := newSpinner("Exporting", !noProgress && len(cfg.Output.Formats) > 0)
	paths, exportErr := app.Export(idx, r)
	finishBar(exportBar)

	printSummary(cmd.ErrOrStderr(), report.Statistics(idx), paths)

	if err := app.WriteMetrics(); err != nil {
		app.Logger.Warn().Err(err).Msg("failed to write metrics")
	}

	return exportErr
}

func collect(ctx context.Context, app *ghactivity.Application, r daterange.Range) (*activity.Index, error) {
	bar := newSpinner("Fetching events", !noProgress)
	defer finishBar(bar)

	return app.Collect(ctx, r, func(page, kept int) {
		bar.Describe(fmt.Sprintf("Fetching events (page %d, %d kept)", page, kept))
	})
}
