// Package metrics collects Prometheus metrics for a worklog check run.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Afrawles/worklogwatch/internal/jira"
)

// Collector records tracker requests and check outcomes.
type Collector struct {
	requests       *prometheus.CounterVec
	requestErrors  prometheus.Counter
	requestLatency prometheus.Histogram
	worklogs       prometheus.Gauge
	loggedSeconds  prometheus.Gauge
	deviatingDays  prometheus.Gauge
	lastRun        prometheus.Gauge
}

var _ jira.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worklogwatch_jira_requests_total",
			Help: "Jira API responses by HTTP status code.",
		}, []string{"status_code"}),
		requestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worklogwatch_jira_request_errors_total",
			Help: "Jira API requests that got no response.",
		}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "worklogwatch_jira_request_duration_seconds",
			Help:    "Jira API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		worklogs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worklogwatch_worklogs",
			Help: "Worklogs matched by the last run.",
		}),
		loggedSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worklogwatch_logged_seconds",
			Help: "Total time logged over the checked range.",
		}),
		deviatingDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worklogwatch_deviating_days",
			Help: "Days whose logged time differs from the baseline.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worklogwatch_last_run_timestamp_seconds",
			Help: "Unix time of the last completed check.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestErrors,
		c.requestLatency,
		c.worklogs,
		c.loggedSeconds,
		c.deviatingDays,
		c.lastRun,
	)

	return c
}

func (c *Collector) OnRequest(event jira.RequestEvent) {
	c.requestLatency.Observe(event.Latency.Seconds())
	if event.StatusCode == 0 {
		c.requestErrors.Inc()
		return
	}
	c.requests.WithLabelValues(strconv.Itoa(event.StatusCode)).Inc()
}

// RecordCheck stores the outcome of a completed check.
func (c *Collector) RecordCheck(worklogs int, logged time.Duration, deviatingDays int, at time.Time) {
	c.worklogs.Set(float64(worklogs))
	c.loggedSeconds.Set(logged.Seconds())
	c.deviatingDays.Set(float64(deviatingDays))
	c.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric gathered by g to filename in the
// text exposition format read by the node exporter's textfile collector.
func WriteTextfile(filename string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(filename, g)
}
