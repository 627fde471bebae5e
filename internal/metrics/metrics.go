package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the lock metrics of one process. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// Attempts counts install attempts by outcome (acquired, busy, stale, error).
	Attempts *prometheus.CounterVec
	// Timeouts counts acquisitions that gave up after the timeout.
	Timeouts prometheus.Counter
	// StaleBreaks counts expired lock files removed by this process.
	StaleBreaks prometheus.Counter
	// Releases counts locks released by this process.
	Releases prometheus.Counter
	// WaitSeconds observes how long successful acquisitions waited.
	WaitSeconds prometheus.Histogram
	// Held reports whether this process currently holds a lock.
	Held prometheus.Gauge
}

// New creates a Collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dirlock_acquire_attempts_total",
			Help: "Total number of lock install attempts by result",
		}, []string{"result"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirlock_acquire_timeouts_total",
			Help: "Total number of acquisitions that timed out",
		}),
		StaleBreaks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirlock_stale_breaks_total",
			Help: "Total number of expired lock files removed",
		}),
		Releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirlock_releases_total",
			Help: "Total number of locks released",
		}),
		WaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirlock_acquire_wait_seconds",
			Help:    "Time spent waiting for a successful acquisition",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Held: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dirlock_held",
			Help: "1 while this process holds the lock",
		}),
	}

	c.registry.MustRegister(c.Attempts, c.Timeouts, c.StaleBreaks, c.Releases, c.WaitSeconds, c.Held)
	return c
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveAttempt records one install attempt.
func (c *Collector) ObserveAttempt(result string) {
	if c == nil {
		return
	}
	c.Attempts.WithLabelValues(result).Inc()
}

// ObserveAcquired records a successful acquisition after waiting d.
func (c *Collector) ObserveAcquired(d time.Duration) {
	if c == nil {
		return
	}
	c.WaitSeconds.Observe(d.Seconds())
	c.Held.Set(1)
}

// ObserveTimeout records an acquisition that gave up.
func (c *Collector) ObserveTimeout() {
	if c == nil {
		return
	}
	c.Timeouts.Inc()
}

// ObserveStaleBreak records a removed expired lock.
func (c *Collector) ObserveStaleBreak() {
	if c == nil {
		return
	}
	c.StaleBreaks.Inc()
}

// ObserveRelease records a release.
func (c *Collector) ObserveRelease() {
	if c == nil {
		return
	}
	c.Releases.Inc()
	c.Held.Set(0)
}

// WriteTextfile writes the current metrics in the text exposition format to
// path, atomically, for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
