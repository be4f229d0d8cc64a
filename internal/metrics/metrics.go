// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics publishes Prometheus metrics for page rendering and the
// template and output caches. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Recorder owns a registry and the storefront collectors.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	renders        *prometheus.CounterVec
	renderLatency  *prometheus.HistogramVec
	templateLookup *prometheus.CounterVec
	outputLookup   *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg, or on a fresh registry when
// reg is nil so tests can build as many recorders as they like.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "render",
		Name:      "requests_total",
		Help:      "Page renders by page type and outcome.",
	}, []string{"page_type", "outcome"})

	renderLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Page render latency.",
		Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"page_type"})

	templateLookup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "template_cache",
		Name:      "lookups_total",
		Help:      "Theme template reads by cache result.",
	}, []string{"result"})

	outputLookup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "output_cache",
		Name:      "lookups_total",
		Help:      "Rendered page cache lookups by result.",
	}, []string{"result"})

	reg.MustRegister(renders, renderLatency, templateLookup, outputLookup)

	return &Recorder{
		gatherer:       reg,
		handler:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		renders:        renders,
		renderLatency:  renderLatency,
		templateLookup: templateLookup,
		outputLookup:   outputLookup,
	}
}

// Handler exposes the registry over HTTP.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying registry for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveRender records a finished render.
func (r *Recorder) ObserveRender(pageType, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	pt := normalizeLabel(pageType)
	r.renders.WithLabelValues(pt, normalizeLabel(outcome)).Inc()
	r.renderLatency.WithLabelValues(pt).Observe(d.Seconds())
}

// ObserveTemplateRead records one template store read.
func (r *Recorder) ObserveTemplateRead(hit bool) {
	if r == nil {
		return
	}
	r.templateLookup.WithLabelValues(result(hit)).Inc()
}

// ObserveOutputCache records one rendered-page cache lookup.
func (r *Recorder) ObserveOutputCache(hit bool) {
	if r == nil {
		return
	}
	r.outputLookup.WithLabelValues(result(hit)).Inc()
}

func result(hit bool) string {
	if hit {
		return ResultHit
	}
	return ResultMiss
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
