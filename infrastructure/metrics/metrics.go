// Package metrics exposes HTTP and trainer lifecycle counters to prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auto_trainer"

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	TrainersCreated  prometheus.Counter
	ConfigsCreated   prometheus.Counter
	ConfigsActivated prometheus.Counter
	DatasetsUploaded *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the
// process and go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		TrainersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainers_created_total",
			Help:      "Number of trainers created.",
		}),
		ConfigsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainer_configs_created_total",
			Help:      "Number of trainer configs created.",
		}),
		ConfigsActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trainer_configs_activated_total",
			Help:      "Number of trainer configs activated.",
		}),
		DatasetsUploaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_datasets_uploaded_total",
				Help:      "Number of evaluation datasets stored, by file format.",
			},
			[]string{"format"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Trainer detail cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.TrainersCreated,
		m.ConfigsCreated,
		m.ConfigsActivated,
		m.DatasetsUploaded,
		m.CacheLookups,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records one request count and latency observation per request.
// Unmatched routes are grouped under "unmatched" to bound label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// The helpers below tolerate a nil receiver so services can run without
// metrics in tests and CLI commands.

func (m *Metrics) TrainerCreated() {
	if m == nil {
		return
	}
	m.TrainersCreated.Inc()
}

func (m *Metrics) ConfigCreated() {
	if m == nil {
		return
	}
	m.ConfigsCreated.Inc()
}

func (m *Metrics) ConfigActivated() {
	if m == nil {
		return
	}
	m.ConfigsActivated.Inc()
}

func (m *Metrics) DatasetUploaded(format string) {
	if m == nil {
		return
	}
	m.DatasetsUploaded.WithLabelValues(format).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
