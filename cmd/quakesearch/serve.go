package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/couchcryptid/quake-feed-search/internal/adapter/atomfeed"
	"github.com/couchcryptid/quake-feed-search/internal/adapter/httpadapter"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	"github.com/couchcryptid/quake-feed-search/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve searches over HTTP",
		Long: `Serve GET /search with the same criteria as the search command, using
underscores in parameter names (date_from, time_to, bucket, ...). The response
is the text report. /healthz, /readyz and /metrics are served alongside.

Parsed feed files are cached by name, size and modification time
(PARSE_CACHE_SIZE entries).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	metrics := observability.NewMetrics()

	parser, err := atomfeed.NewCachedParser(atomfeed.NewAtomParser(), cfg.ParseCacheSize, metrics)
	if err != nil {
		return configError(err)
	}
	reader := atomfeed.NewDirReader(cfg.FeedDir, cfg.FeedExt, parser)
	searcher := pipeline.New(reader, pipeline.NewExtractor(cfg.ExtractOptions()), logger, metrics, clockwork.NewRealClock())

	srv := httpadapter.NewServer(cfg.HTTPAddr, searcher, searcher, logger)
	logger.Info("serving feed searches", "feed_dir", cfg.FeedDir, "cache_size", cfg.ParseCacheSize)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
