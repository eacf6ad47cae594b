// Package ghactivity wires configuration, the GitHub feed client, the
// collector, metrics and exporters into one run.
package ghactivity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/config"
	"github.com/Afrawles/ghactivity/internal/daterange"
	"github.com/Afrawles/ghactivity/internal/github"
	"github.com/Afrawles/ghactivity/internal/logger"
	"github.com/Afrawles/ghactivity/internal/metrics"
	"github.com/Afrawles/ghactivity/internal/report"
	"github.com/Afrawles/ghactivity/internal/secrets"
)

// newSecretFetcher is replaced in tests.
var newSecretFetcher = func(ctx context.Context) (secrets.Fetcher, error) {
	return secrets.NewSecretManagerClient(ctx, "")
}

type Application struct {
	Config   *config.Config
	Logger   *logger.Logger
	Fetcher  activity.Fetcher
	Metrics  *metrics.Run
	Exporter *report.Exporter
	RunID    string

	now func() time.Time
}

// New resolves the token and builds the GitHub client for cfg.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	token, err := resolveToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := github.NewClient(github.Options{
		BaseURL:           cfg.GitHub.BaseURL,
		Token:             token,
		PerPage:           cfg.GitHub.PerPage,
		Timeout:           cfg.GitHub.Timeout,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}

	return NewWithFetcher(cfg, client), nil
}

// NewWithFetcher builds an Application around an existing feed source.
func NewWithFetcher(cfg *config.Config, f activity.Fetcher) *Application {
	runID := uuid.NewString()
	log := logger.Named("app").With().Str("run_id", runID).Logger()

	return &Application{
		Config:   cfg,
		Logger:   &log,
		Fetcher:  f,
		Metrics:  metrics.NewRun(cfg.GitHub.UserName),
		Exporter: report.NewExporter(cfg.Output.Directory),
		RunID:    runID,
		now:      time.Now,
	}
}

func resolveToken(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.GitHub.AccessToken != "" || cfg.GitHub.TokenSecret == "" {
		return cfg.GitHub.AccessToken, nil
	}

	f, err := newSecretFetcher(ctx)
	if err != nil {
		return "", err
	}
	token, err := secrets.Token(ctx, f, cfg.GitHub.TokenSecret)
	if err != nil {
		return "", err
	}

	logger.Named("app").Debug().Str("secret", cfg.GitHub.TokenSecret).Msg("token loaded from secret manager")
	return token, nil
}

// Collect builds the activity index for r. onPage may be nil.
func (app *Application) Collect(ctx context.Context, r daterange.Range, onPage func(page, kept int)) (*activity.Index, error) {
	cfg := app.Config
	app.Logger.Info().
		Str("user", cfg.GitHub.UserName).
		Time("from", r.From).
		Time("to", r.To).
		Bool("private", cfg.GitHub.Private).
		Msg("collecting activity")

	collector := activity.NewCollector(app.Fetcher, activity.Options{
		MaxPages: cfg.GitHub.MaxPages,
		Strict:   cfg.Strict,
		Logger:   app.Logger,
		Recorder: app.Metrics,
		OnPage:   onPage,
	})

	start := app.now()
	idx, err := collector.Collect(ctx, cfg.GitHub.UserName, r.From, r.To, cfg.GitHub.Private)
	if err != nil {
		app.Logger.Error().Err(err).Msg("collection failed")
		return nil, err
	}

	finished := app.now()
	app.Metrics.Collected(idx, finished.Sub(start), finished)
	return idx, nil
}

// Export writes every configured file format and returns the written paths.
// A failing format does not stop the others; all failures are returned joined.
func (app *Application) Export(idx *activity.Index, r daterange.Range) ([]string, error) {
	formats := app.Config.Output.Formats
	if len(formats) == 0 {
		return nil, nil
	}

	dir := app.Config.Output.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	generated := app.now()
	prefix := fmt.Sprintf("report_%s_%s", app.Config.GitHub.UserName, generated.Format("20060102_150405"))
	meta := report.Meta{
		RunID:       app.RunID,
		User:        app.Config.GitHub.UserName,
		Private:     app.Config.GitHub.Private,
		Range:       r,
		GeneratedAt: generated,
	}
	stats := report.Statistics(idx)

	var (
		paths []string
		errs  []error
	)
	for _, format := range formats {
		var (
			written []string
			err     error
		)
		switch format {
		case "json":
			var p string
			p, err = app.Exporter.ExportJSON(idx, meta, prefix+".json")
			written = []string{p}
		case "html":
			var p string
			p, err = app.Exporter.ExportHTML(idx, stats, meta, prefix+".html")
			written = []string{p}
		case "csv":
			written, err = report.NewCSVExporter(dir, prefix).Export(idx, r)
		case "xlsx":
			var p string
			p, err = report.NewExcelExporter(dir, prefix).Export(idx, r)
			written = []string{p}
		default:
			err = fmt.Errorf("unknown format %q", format)
		}

		if err != nil {
			app.Logger.Error().Err(err).Str("format", format).Msg("export failed")
			errs = append(errs, fmt.Errorf("%s export: %w", format, err))
			continue
		}
		app.Metrics.Exported(format)
		app.Logger.Info().Str("format", format).Strs("files", written).Msg("report exported")
		paths = append(paths, written...)
	}

	return paths, errors.Join(errs...)
}

// WriteMetrics writes the run's metrics textfile when one is configured.
func (app *Application) WriteMetrics() error {
	path := app.Config.MetricsFile
	if path == "" {
		return nil
	}
	if err := app.Metrics.WriteTextfile(path); err != nil {
		return err
	}
	app.Logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}
