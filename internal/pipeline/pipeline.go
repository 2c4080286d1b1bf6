package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DocumentSource yields parsed feed documents in a stable order.
type DocumentSource interface {
	Documents(ctx context.Context) iter.Seq2[domain.Document, error]
}

// Extractor converts a raw entry into an event record.
type Extractor interface {
	Extract(raw domain.RawEntry) (domain.EventRecord, error)
}

// Matcher decides whether a record belongs in the result.
type Matcher interface {
	Match(rec domain.EventRecord) bool
}

// BatchLoader writes matched records to a downstream sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.EventRecord) error
}

// Stats summarizes one search.
type Stats struct {
	FilesScanned   int
	FilesSkipped   int
	EntriesScanned int
	EntriesSkipped int
	Matched        int
	Duration       time.Duration
}

// Result holds the matching groups of one search, in file order.
type Result struct {
	Groups []domain.Group
	Stats  Stats
}

// Records flattens the groups into a single slice, preserving order.
func (r Result) Records() []domain.EventRecord {
	out := make([]domain.EventRecord, 0, r.Stats.Matched)
	for _, g := range r.Groups {
		out = append(out, g.Records...)
	}
	return out
}

// Searcher runs the read-extract-match sequence over a document source.
type Searcher struct {
	source    DocumentSource
	extractor Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
}

// New creates a Searcher. A nil extractor uses domain.DefaultExtractOptions and
// a nil clock uses the real clock.
func New(source DocumentSource, extractor Extractor, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Searcher {
	if extractor == nil {
		extractor = NewExtractor(domain.DefaultExtractOptions)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Searcher{
		source:    source,
		extractor: extractor,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// CheckReadiness returns nil once a search has completed, or when the
// underlying source reports itself readable.
func (s *Searcher) CheckReadiness(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if rc, ok := s.source.(interface{ CheckReadiness(context.Context) error }); ok {
		return rc.CheckReadiness(ctx)
	}
	return errors.New("no search has completed yet")
}

// Search scans every document once, sequentially, and collects the records m
// accepts. Unparsable files and entries missing a required field are logged,
// counted and skipped. Any other source error aborts the search.
func (s *Searcher) Search(ctx context.Context, m Matcher) (Result, error) {
	start := s.clock.Now()
	var res Result

	for doc, err := range s.source.Documents(ctx) {
		if err != nil {
			var docErr *domain.DocumentError
			if errors.As(err, &docErr) {
				s.logger.Warn("skipping unparsable feed file", "path", docErr.Path, "error", docErr.Err)
				s.metrics.FilesSkipped.Inc()
				res.Stats.FilesSkipped++
				continue
			}
			return Result{}, fmt.Errorf("scan feeds: %w", err)
		}

		s.metrics.FilesScanned.Inc()
		res.Stats.FilesScanned++
		if group := s.matchDocument(doc, m, &res.Stats); len(group.Records) > 0 {
			res.Groups = append(res.Groups, group)
		}
	}

	res.Stats.Duration = s.clock.Since(start)
	s.metrics.SearchDuration.Observe(res.Stats.Duration.Seconds())
	s.metrics.MatchesPerRun.Observe(float64(res.Stats.Matched))
	s.ready.Store(true)

	s.logger.Debug("search complete",
		"files", res.Stats.FilesScanned,
		"files_skipped", res.Stats.FilesSkipped,
		"entries", res.Stats.EntriesScanned,
		"entries_skipped", res.Stats.EntriesSkipped,
		"matched", res.Stats.Matched,
		"duration", res.Stats.Duration,
	)
	return res, nil
}

func (s *Searcher) matchDocument(doc domain.Document, m Matcher, stats *Stats) domain.Group {
	group := domain.Group{Source: doc.Path}
	for i, raw := range doc.Entries {
		rec, err := s.extractor.Extract(raw)
		if err != nil {
			field := "unknown"
			var mf *domain.MissingFieldError
			if errors.As(err, &mf) {
				field = mf.Field
			}
			s.logger.Warn("skipping entry", "path", doc.Path, "entry", i, "field", field, "error", err)
			s.metrics.EntriesSkipped.WithLabelValues(field).Inc()
			stats.EntriesSkipped++
			continue
		}

		s.metrics.EntriesScanned.Inc()
		stats.EntriesScanned++
		if m.Match(rec) {
			group.Records = append(group.Records, rec)
		}
	}
	s.metrics.EntriesMatched.Add(float64(len(group.Records)))
	stats.Matched += len(group.Records)
	return group
}

// Publish sends every matched record of res to l in a single batch. An empty
// result is not published.
func (s *Searcher) Publish(ctx context.Context, l BatchLoader, res Result) error {
	records := res.Records()
	if len(records) == 0 {
		return nil
	}
	if err := l.LoadBatch(ctx, records); err != nil {
		s.logger.Error("publish matches failed", "error", err, "batch_size", len(records))
		return fmt.Errorf("publish matches: %w", err)
	}
	s.metrics.MatchesPublished.Add(float64(len(records)))
	return nil
}
