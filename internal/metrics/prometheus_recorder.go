package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	pageDuration  prom.Histogram
	pageOutcome   *prom.CounterVec
	hookDuration  *prom.HistogramVec
	inFlight      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of sequential build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pageDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Duration of individual page builds",
			Buckets:   prom.ExponentialBuckets(0.0005, 4, 8),
		})
		pr.pageOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Page builds by outcome",
		}, []string{"outcome"})
		pr.hookDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_hook_duration_seconds",
			Help:      "Duration of plugin hook invocations",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"hook", "result"})
		pr.inFlight = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_in_flight",
			Help:      "Page builds currently running",
		})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome,
			pr.pageDuration, pr.pageOutcome, pr.hookDuration, pr.inFlight)
	})
	return pr
}

// WriteFile writes the current metrics in the Prometheus text format.
func (p *PrometheusRecorder) WriteFile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageOutcome(outcome PageOutcome) {
	if p == nil || p.pageOutcome == nil {
		return
	}
	p.pageOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveHookDuration(hook string, d time.Duration, success bool) {
	if p == nil || p.hookDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.hookDuration.WithLabelValues(hook, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetPagesInFlight(n int) {
	if p == nil || p.inFlight == nil {
		return
	}
	p.inFlight.Set(float64(n))
}
