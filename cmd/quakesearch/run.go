package main

import (
	"context"
	"errors"

	"github.com/couchcryptid/quake-feed-search/internal/adapter/atomfeed"
	"github.com/couchcryptid/quake-feed-search/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	"github.com/couchcryptid/quake-feed-search/internal/output"
	"github.com/couchcryptid/quake-feed-search/internal/pipeline"
	"github.com/couchcryptid/quake-feed-search/internal/query"
	"github.com/couchcryptid/quake-feed-search/internal/report"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// runSearch validates the criteria, scans the feed directory, overwrites the
// report and publishes the matches when a sink is configured. Invalid criteria
// and unreadable feed directories leave the previous report untouched.
func (a *app) runSearch(ctx context.Context, params query.Params) error {
	q, err := query.Build(params)
	if err != nil {
		return invalidCriterion(err)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsFor(reg)

	reader := atomfeed.NewDirReader(a.cfg.FeedDir, a.cfg.FeedExt, nil)
	searcher := pipeline.New(reader, pipeline.NewExtractor(a.cfg.ExtractOptions()), a.logger, metrics, clockwork.NewRealClock())

	res, err := searcher.Search(ctx, q)
	if err != nil {
		return &output.CLIError{
			Summary:    "search failed",
			Detail:     err.Error(),
			Suggestion: "check that the feed directory exists (--dir or QUAKE_FEED_DIR)",
			ExitCode:   output.ExitGeneral,
			Err:        err,
		}
	}

	if err := report.WriteFile(a.cfg.ReportPath, q.Describe(), res.Groups); err != nil {
		return err
	}
	metrics.ReportsWritten.Inc()

	a.printer.PrintSummary(output.Summary{
		Description:    q.Describe(),
		ReportPath:     a.cfg.ReportPath,
		FilesScanned:   res.Stats.FilesScanned,
		FilesSkipped:   res.Stats.FilesSkipped,
		EntriesSkipped: res.Stats.EntriesSkipped,
		Matched:        res.Stats.Matched,
		Duration:       res.Stats.Duration,
	})

	var publishErr error
	if a.cfg.KafkaEnabled() {
		publishErr = a.publish(ctx, searcher, res)
	}

	if a.cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(a.cfg.MetricsTextfile, reg); err != nil {
			a.logger.Warn("metrics textfile not written", "path", a.cfg.MetricsTextfile, "error", err)
		}
	}
	return publishErr
}

func (a *app) publish(ctx context.Context, searcher *pipeline.Searcher, res pipeline.Result) error {
	writer := kafka.NewWriter(a.cfg, a.logger)
	defer func() {
		if err := writer.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}()

	if err := searcher.Publish(ctx, writer, res); err != nil {
		return &output.CLIError{
			Summary:  "matches were not published",
			Detail:   err.Error(),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}
	if n := res.Stats.Matched; n > 0 {
		a.printer.Info("Published %d match(es) to %s", n, a.cfg.KafkaTopic)
	}
	return nil
}

func invalidCriterion(err error) error {
	suggestion := ""
	if errors.Is(err, query.ErrInvalidCriterion) {
		suggestion = "run 'quakesearch search --help' for accepted formats"
	}
	return &output.CLIError{
		Summary:    "invalid search criterion",
		Detail:     err.Error(),
		Suggestion: suggestion,
		ExitCode:   output.ExitGeneral,
		Err:        err,
	}
}
