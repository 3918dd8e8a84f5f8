package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deusflow/thainews/internal/config"
	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/metrics"
	"github.com/deusflow/thainews/internal/news"
	"github.com/deusflow/thainews/internal/ratelimit"
	"github.com/deusflow/thainews/internal/rss"
	"github.com/deusflow/thainews/internal/storage"
	"github.com/deusflow/thainews/internal/translate"
)

// Fetcher returns the current entries of one feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]rss.Entry, error)
}

// Store loads and persists the full record sequence.
type Store interface {
	Load() []news.Record
	Save(records []news.Record) error
}

// Archiver receives every batch of new records after a successful save.
type Archiver interface {
	Archive(ctx context.Context, records []news.Record) error
	Count(ctx context.Context) (int, error)
}

// Result summarizes one run.
type Result struct {
	FeedsProcessed      int
	FeedErrors          int
	EntriesSeen         int
	Duplicates          int
	Deferred            int
	NewRecords          int
	TranslationFailures int
	StoreSize           int
	ArchiveSize         int
	Saved               bool
}

// Runner executes the ingest pipeline: fetch, dedupe, translate, persist.
// It keeps no state between runs; overlapping runs against the same store
// file must be serialized by the caller.
type Runner struct {
	cfg        *config.Config
	fetcher    Fetcher
	translator translate.Translator
	store      Store
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	archive    Archiver
	now        func() time.Time
}

type Option func(*Runner)

func WithArchive(a Archiver) Option {
	return func(r *Runner) { r.archive = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(r *Runner) { r.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(cfg *config.Config, fetcher Fetcher, translator translate.Translator, store Store, opts ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		fetcher:    fetcher,
		translator: translator,
		store:      store,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.limiter == nil {
		r.limiter = ratelimit.New(cfg.MaxTranslations, cfg.TranslationInterval)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	return r
}

// Run processes every configured feed once. The only error it returns is a
// failure to persist the store; everything else is logged and counted.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	var res Result

	existing := r.store.Load()
	seen := storage.ExistingKeys(existing)
	logger.Info("store loaded", "records", len(existing))

	var fresh []news.Record
	for _, feed := range r.cfg.Feeds {
		records, ok := r.processFeed(ctx, feed, seen, &res)
		if !ok {
			continue
		}
		fresh = append(fresh, records...)
	}

	if len(fresh) == 0 {
		res.StoreSize = len(existing)
		logger.Info("no new items, store left untouched", "feeds", res.FeedsProcessed, "feed_errors", res.FeedErrors)
		r.finish(started, res)
		return res, nil
	}

	merged := storage.Merge(fresh, existing, r.cfg.MaxRecords)
	if err := r.store.Save(merged); err != nil {
		res.StoreSize = len(existing)
		r.finish(started, res)
		return res, fmt.Errorf("failed to save store: %w", err)
	}
	res.Saved = true
	res.NewRecords = len(fresh)
	res.StoreSize = len(merged)
	r.metrics.RecordsWritten.Add(float64(len(fresh)))

	logger.Info("store updated",
		"new", len(fresh),
		"total", len(merged),
		"dropped", len(fresh)+len(existing)-len(merged),
		"translation_failures", res.TranslationFailures,
	)

	if r.archive != nil {
		res.ArchiveSize = r.archiveRecords(ctx, fresh)
	}

	r.finish(started, res)
	return res, nil
}

// processFeed fetches one feed and builds records for entries not yet seen.
// A fetch failure is reported through ok=false and never stops the run.
func (r *Runner) processFeed(ctx context.Context, feed config.FeedSource, seen map[string]struct{}, res *Result) ([]news.Record, bool) {
	entries, err := r.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		res.FeedErrors++
		r.metrics.FeedErrors.WithLabelValues(feed.Name).Inc()
		logger.Error("feed fetch failed, skipping", "source", feed.Name, "url", feed.URL, "error", err)
		return nil, false
	}
	res.FeedsProcessed++

	// Entries are trusted in feed order; no recency sort.
	if len(entries) > r.cfg.EntriesPerFeed {
		entries = entries[:r.cfg.EntriesPerFeed]
	}
	logger.Debug("feed fetched", "source", feed.Name, "entries", len(entries))

	var records []news.Record
	for _, entry := range entries {
		res.EntriesSeen++
		r.metrics.EntriesFetched.Inc()

		if entry.Link == "" {
			logger.Warn("entry without link skipped", "source", feed.Name, "title", entry.Title)
			continue
		}
		if _, dup := seen[entry.Link]; dup {
			res.Duplicates++
			r.metrics.DuplicatesFiltered.Inc()
			continue
		}

		if err := r.limiter.Acquire(ctx); err != nil {
			// Not recorded, so the next run picks the entry up again.
			res.Deferred++
			r.metrics.TranslationsDeferred.Inc()
			if errors.Is(err, ratelimit.ErrBudgetExhausted) {
				logger.Debug("translation deferred", "source", feed.Name, "link", entry.Link, "error", err)
			} else {
				logger.Warn("translation deferred", "source", feed.Name, "link", entry.Link, "error", err)
			}
			continue
		}

		translated := r.translator.Translate(ctx, news.TranslationInput(entry.Title, entry.Link))
		if translated == "" {
			translated = translate.Sentinel("empty translation")
		}
		ok := !translate.IsSentinel(translated)
		r.metrics.IncrementTranslation(ok)
		if !ok {
			res.TranslationFailures++
			logger.Warn("translation failed", "source", feed.Name, "link", entry.Link, "result", translated)
		}

		records = append(records, news.NewRecord(feed.Name, entry.Title, entry.Link, translated, r.now()))
		seen[entry.Link] = struct{}{}
	}

	logger.Info("feed processed", "source", feed.Name, "new", len(records))
	return records, true
}

// archiveRecords mirrors fresh into the archive and returns its size, or 0
// when the archive is unavailable.
func (r *Runner) archiveRecords(ctx context.Context, fresh []news.Record) int {
	if err := r.archive.Archive(ctx, fresh); err != nil {
		logger.Warn("failed to archive new records", "error", err)
		return 0
	}
	total, err := r.archive.Count(ctx)
	if err != nil {
		logger.Warn("failed to count archived records", "error", err)
		return 0
	}
	logger.Info("records archived", "new", len(fresh), "archive_total", total)
	return total
}

func (r *Runner) finish(started time.Time, res Result) {
	r.metrics.StoreSize.Set(float64(res.StoreSize))
	r.metrics.RecordRun(started)

	if r.cfg.MetricsTextfile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.cfg.MetricsTextfile); err != nil {
		logger.Warn("metrics not written", "path", r.cfg.MetricsTextfile, "error", err)
	}
}
