package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Interview-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Turn outcomes by phase
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "turns_total",
			Help:      "Interview turns processed, by resulting phase",
		},
		[]string{"phase", "survey_type"},
	)

	// Model gateway failures
	ModelErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "model_errors_total",
			Help:      "Total model gateway call failures",
		},
		[]string{"operation"},
	)

	// Parser recoveries that ended in the fixed fallback question
	ParserFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "parser_fallbacks_total",
			Help:      "Model replies that defeated every parse strategy",
		},
	)

	// Enrichment pipeline steps
	EnrichmentStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "enrichment_steps_total",
			Help:      "Enrichment pipeline step outcomes",
		},
		[]string{"step", "status"},
	)

	// Rate limiter rejections
	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"tier"},
	)

	// Auth requests
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "interview_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Model call duration
	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "model_duration_seconds",
			Namespace: "pulse",
			Subsystem: "interview_api",
			Help:      "Model gateway call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
)

// Recorder is the injectable surface over the package counters.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (Recorder) RecordEnrichmentStep(step, status string) {
	EnrichmentStepsTotal.WithLabelValues(step, status).Inc()
}

func (Recorder) RecordTurn(phase, surveyType string) {
	TurnsTotal.WithLabelValues(phase, surveyType).Inc()
}

func (Recorder) RecordParserFallback() {
	ParserFallbacksTotal.Inc()
}

func (Recorder) RecordRateLimitRejection(tier string) {
	RateLimitRejectionsTotal.WithLabelValues(tier).Inc()
}
