package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one run. The process exits after a run, so
// they are exported through a node_exporter textfile rather than an endpoint.
type Metrics struct {
	registry *prometheus.Registry

	EntriesFetched       prometheus.Counter
	DuplicatesFiltered   prometheus.Counter
	FeedErrors           *prometheus.CounterVec
	Translations         *prometheus.CounterVec
	TranslationsDeferred prometheus.Counter
	RecordsWritten       prometheus.Counter
	StoreSize            prometheus.Gauge
	RunDuration          prometheus.Gauge
	LastRun              prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EntriesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thainews_entries_fetched_total",
			Help: "Feed entries considered in this run.",
		}),
		DuplicatesFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thainews_duplicates_filtered_total",
			Help: "Entries skipped because their link is already stored.",
		}),
		FeedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thainews_feed_errors_total",
			Help: "Feeds that could not be fetched.",
		}, []string{"source"}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thainews_translations_total",
			Help: "Translation attempts by result.",
		}, []string{"result"}),
		TranslationsDeferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thainews_translations_deferred_total",
			Help: "Entries left for the next run because the translation budget was spent.",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thainews_records_written_total",
			Help: "New records persisted in this run.",
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thainews_store_records",
			Help: "Records in the store after the run.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thainews_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thainews_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.EntriesFetched,
		m.DuplicatesFiltered,
		m.FeedErrors,
		m.Translations,
		m.TranslationsDeferred,
		m.RecordsWritten,
		m.StoreSize,
		m.RunDuration,
		m.LastRun,
	)
	return m
}

func (m *Metrics) IncrementTranslation(ok bool) {
	if ok {
		m.Translations.WithLabelValues("success").Inc()
		return
	}
	m.Translations.WithLabelValues("failure").Inc()
}

func (m *Metrics) RecordRun(started time.Time) {
	now := time.Now()
	m.RunDuration.Set(now.Sub(started).Seconds())
	m.LastRun.Set(float64(now.Unix()))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
