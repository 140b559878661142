package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/tahongtrung/phenomic/internal/config"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                 sync.Once
	phaseDuration        *prom.HistogramVec
	buildDuration        prom.Histogram
	phaseResults         *prom.CounterVec
	buildOutcome         *prom.CounterVec
	prerenderConcurrency prom.Gauge
	pagesRendered        prom.Counter
	filesWritten         prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.phaseDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual build phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.phaseResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "phase_results_total",
			Help:      "Phase result counts by outcome",
		}, []string{"phase", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.prerenderConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "prerender_concurrency",
			Help:      "Configured prerender concurrency cap for the last build",
		})
		pr.pagesRendered = prom.NewCounter(prom.CounterOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "pages_rendered_total",
			Help:      "Total pages rendered across builds",
		})
		pr.filesWritten = prom.NewCounter(prom.CounterOpts{
			Namespace: config.DefaultMetricsNamespace,
			Name:      "files_written_total",
			Help:      "Total output files written across builds",
		})
		reg.MustRegister(pr.phaseDuration, pr.buildDuration, pr.phaseResults, pr.buildOutcome, pr.prerenderConcurrency, pr.pagesRendered, pr.filesWritten)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil || p.phaseDuration == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPhaseResult(phase string, result ResultLabel) {
	if p == nil || p.phaseResults == nil {
		return
	}
	p.phaseResults.WithLabelValues(phase, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPrerenderConcurrency(n int) {
	if p == nil || p.prerenderConcurrency == nil {
		return
	}
	p.prerenderConcurrency.Set(float64(n))
}

func (p *PrometheusRecorder) AddPagesRendered(n int) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.Add(float64(n))
}

func (p *PrometheusRecorder) AddFilesWritten(n int) {
	if p == nil || p.filesWritten == nil {
		return
	}
	p.filesWritten.Add(float64(n))
}
