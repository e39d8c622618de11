package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	ResultLevels     *prometheus.CounterVec
	FallbacksTotal   *prometheus.CounterVec
	LLMCallsTotal    *prometheus.CounterVec
	LLMDuration      prometheus.Histogram
	BatchSize        prometheus.Histogram
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_analyses_total",
			Help: "Total note analyses by outcome (ok or fallback).",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acuity_analysis_duration_seconds",
			Help:    "Duration of single-note analyses in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. ~128s
		}, []string{"model"}),
		ResultLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_result_levels_total",
			Help: "Total results by assigned triage level.",
		}, []string{"level"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_fallbacks_total",
			Help: "Total safety fallback results by failure classification.",
		}, []string{"reason"}),
		LLMCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acuity_llm_calls_total",
			Help: "Total reasoning provider calls by status.",
		}, []string{"status"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_llm_call_duration_seconds",
			Help:    "Duration of individual reasoning provider calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s .. ~64s
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "acuity_batch_size",
			Help:    "Number of notes per batch request.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		}),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.ResultLevels,
		m.FallbacksTotal,
		m.LLMCallsTotal,
		m.LLMDuration,
		m.BatchSize,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnLLMCall: func(duration float64, err error) {
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.LLMCallsTotal.WithLabelValues(status).Inc()
			m.LLMDuration.Observe(duration)
		},
		OnComplete: func(e *CompleteEvent) {
			outcome := "ok"
			if e.Fallback {
				outcome = "fallback"
				m.FallbacksTotal.WithLabelValues(e.Reason).Inc()
			}
			m.AnalysesTotal.WithLabelValues(outcome).Inc()
			m.AnalysisDuration.WithLabelValues(e.Model).Observe(e.Duration)
			m.ResultLevels.WithLabelValues(string(e.Level)).Inc()
		},
		OnBatch: func(size int) {
			m.BatchSize.Observe(float64(size))
		},
	}
}
