// Package metrics counts what a collection run fetched and kept, and writes
// the result as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Afrawles/ghactivity/internal/activity"
)

const namespace = "ghactivity"

// Run holds the metrics of one collection run on a private registry.
type Run struct {
	registry *prometheus.Registry

	pagesTotal     prometheus.Counter
	eventsFetched  prometheus.Counter
	eventsApplied  *prometheus.CounterVec
	eventsSkipped  *prometheus.CounterVec
	duration       prometheus.Gauge
	lastSuccessTS  prometheus.Gauge
	objects        prometheus.Gauge
	activities     prometheus.Gauge
	exportsWritten *prometheus.CounterVec
}

var _ activity.Recorder = (*Run)(nil)

func NewRun(user string) *Run {
	constLabels := prometheus.Labels{"user": user}

	r := &Run{registry: prometheus.NewRegistry()}
	r.pagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "pages_fetched_total",
		Help:        "Feed pages fetched from GitHub",
		ConstLabels: constLabels,
	})
	r.eventsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_fetched_total",
		Help:        "Events received from the feed before filtering",
		ConstLabels: constLabels,
	})
	r.eventsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_applied_total",
		Help:        "Events added to the activity index by type",
		ConstLabels: constLabels,
	}, []string{"type"})
	r.eventsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_skipped_total",
		Help:        "Events left out of the activity index by type and reason",
		ConstLabels: constLabels,
	}, []string{"type", "reason"})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "collect_duration_seconds",
		Help:        "Wall time of the last collection",
		ConstLabels: constLabels,
	})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix timestamp of the last successful collection",
		ConstLabels: constLabels,
	})
	r.objects = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "tracked_objects",
		Help:        "Issues, pull requests and commits in the last index",
		ConstLabels: constLabels,
	})
	r.activities = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "activities",
		Help:        "Activities in the last index",
		ConstLabels: constLabels,
	})
	r.exportsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "exports_written_total",
		Help:        "Report files written by format",
		ConstLabels: constLabels,
	}, []string{"format"})

	r.registry.MustRegister(
		r.pagesTotal, r.eventsFetched, r.eventsApplied, r.eventsSkipped,
		r.duration, r.lastSuccessTS, r.objects, r.activities, r.exportsWritten,
	)
	return r
}

func (r *Run) PageFetched(page, events int) {
	r.pagesTotal.Inc()
	r.eventsFetched.Add(float64(events))
}

func (r *Run) EventApplied(eventType string) {
	r.eventsApplied.WithLabelValues(eventType).Inc()
}

func (r *Run) EventSkipped(eventType string, reason activity.SkipReason) {
	r.eventsSkipped.WithLabelValues(eventType, string(reason)).Inc()
}

// Collected records the outcome of a successful collection.
func (r *Run) Collected(idx *activity.Index, took time.Duration, at time.Time) {
	r.duration.Set(took.Seconds())
	r.lastSuccessTS.Set(float64(at.Unix()))
	r.objects.Set(float64(idx.Len()))
	r.activities.Set(float64(idx.ActivityCount()))
}

func (r *Run) Exported(format string) {
	r.exportsWritten.WithLabelValues(format).Inc()
}

// Registry exposes the run's metrics, e.g. for tests or a push gateway.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile atomically writes the metrics in text exposition format
// for node-exporter's textfile collector.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
