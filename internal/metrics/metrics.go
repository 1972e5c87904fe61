// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics exposes the prometheus instrumentation of the query
// path: per-source latency, result and failure counters, and the gauge of
// in-flight requests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the instruments of the query path.
type Metrics struct {
	registry *prometheus.Registry

	// SourceDuration observes per-source fan-out latency, labeled by
	// source tag and request mode.
	SourceDuration *prometheus.HistogramVec
	// SourceResults counts items returned per source.
	SourceResults *prometheus.CounterVec
	// SourceFailures counts abnormal source terminations by terminal state.
	SourceFailures *prometheus.CounterVec
	// RequestsInFlight gauges concurrently served search requests.
	RequestsInFlight prometheus.Gauge
}

// New builds the metrics registry with the standard process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "searchd_source_duration_seconds",
			Help:    "Duration of one source fan-out, from launch to terminal state.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"source", "mode"}),
		SourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchd_source_results_total",
			Help: "Items returned per source.",
		}, []string{"source"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "searchd_source_failures_total",
			Help: "Abnormal source terminations by terminal state.",
		}, []string{"source", "state"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchd_requests_in_flight",
			Help: "Search requests currently being served.",
		}),
	}

	registry.MustRegister(m.SourceDuration, m.SourceResults, m.SourceFailures, m.RequestsInFlight)

	log.Debug().Msg("Metrics registry initialized")
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
