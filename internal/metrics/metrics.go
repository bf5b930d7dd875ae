// Package metrics exposes scheduler counters in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/medication-reminder/internal/notify"
)

const namespace = "medrem"

// Recorder implements reminder.Recorder on its own registry.
type Recorder struct {
	registry      *prometheus.Registry
	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	notifications *prometheus.CounterVec
	lowInventory  prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_total",
			Help:      "Number of scheduler evaluations.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Time spent in one scheduler evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications emitted, by kind.",
		}, []string{"kind"}),
		lowInventory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_inventory_medicines",
			Help:      "Medicines at or below their restock threshold.",
		}),
	}

	r.registry.MustRegister(
		r.ticks,
		r.tickDuration,
		r.notifications,
		r.lowInventory,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) TickObserved(d time.Duration) {
	r.ticks.Inc()
	r.tickDuration.Observe(d.Seconds())
}

func (r *Recorder) NotificationSent(kind notify.Kind) {
	r.notifications.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) LowInventory(n int) {
	r.lowInventory.Set(float64(n))
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
