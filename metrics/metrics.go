package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "farcaster_analyzer"

// Collector owns the run's Prometheus metrics on a private registry, so a
// one-shot run can push them to a Pushgateway when it finishes.
type Collector struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	SectionDuration  *prometheus.GaugeVec
	SectionFailures  *prometheus.CounterVec
	CastsAnalyzed    *prometheus.GaugeVec
}

// NewCollector creates and registers the run metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Neynar API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Neynar API request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		SectionDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "section_duration_seconds",
				Help:      "Wall time spent in each analysis section",
			},
			[]string{"section"},
		),
		SectionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "section_failures_total",
				Help:      "Analysis sections replaced by an error marker",
			},
			[]string{"section"},
		),
		CastsAnalyzed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "casts_analyzed",
				Help:      "Sanitized casts fed into each section",
			},
			[]string{"section"},
		),
	}

	c.registry.MustRegister(
		c.UpstreamRequests,
		c.UpstreamDuration,
		c.SectionDuration,
		c.SectionFailures,
		c.CastsAnalyzed,
	)
	return c
}

// ObserveRequest records one upstream call.
func (c *Collector) ObserveRequest(endpoint, status string, elapsed time.Duration) {
	c.UpstreamRequests.WithLabelValues(endpoint, status).Inc()
	c.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveSection records a finished section.
func (c *Collector) ObserveSection(section string, elapsed time.Duration, failed bool) {
	c.SectionDuration.WithLabelValues(section).Set(elapsed.Seconds())
	if failed {
		c.SectionFailures.WithLabelValues(section).Inc()
	}
}

// ObserveCasts records the sample size a section worked on.
func (c *Collector) ObserveCasts(section string, n int) {
	c.CastsAnalyzed.WithLabelValues(section).Set(float64(n))
}

// Registry exposes the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Push sends every metric to the Pushgateway at url under the given job.
func (c *Collector) Push(url, job, runID string) error {
	err := push.New(url, job).
		Gatherer(c.registry).
		Grouping("run_id", runID).
		Push()
	if err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	return nil
}
