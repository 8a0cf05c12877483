package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat request metrics
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_requests_total",
		Help: "Total number of chat requests by outcome",
	}, []string{"status"})

	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatbot_request_duration_seconds",
		Help:    "End-to-end duration of chat requests in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	})

	roundsPerRequest = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatbot_rounds_per_request",
		Help:    "Number of LLM rounds needed to answer a chat request",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})

	// LLM metrics
	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_llm_requests_total",
		Help: "Total number of chat-completion requests",
	}, []string{"status"})

	llmLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatbot_llm_latency_seconds",
		Help:    "Chat-completion latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	// Backend metrics
	functionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_function_calls_total",
		Help: "Total number of backend function calls",
	}, []string{"function", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatbot_backend_latency_seconds",
		Help:    "Backend call latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	}, []string{"function"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chatbot_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// Metrics tracks metrics for a single chat request
type Metrics struct {
	correlationID string
	startTime     time.Time
	llmStartTime  time.Time
	mu            sync.Mutex
}

// NewRequestMetrics creates a new metrics tracker for a chat request
func NewRequestMetrics(correlationID string) *Metrics {
	return &Metrics{
		correlationID: correlationID,
		startTime:     time.Now(),
	}
}

// RecordRequestEnd records the outcome of the request.
// status is one of: ok, bad_request, misconfigured, error, depth_exceeded.
func (m *Metrics) RecordRequestEnd(status string, rounds int) {
	chatRequests.WithLabelValues(status).Inc()
	chatDuration.Observe(time.Since(m.startTime).Seconds())
	if rounds > 0 {
		roundsPerRequest.Observe(float64(rounds))
	}
}

// RecordLLMStart records the start of a chat-completion call
func (m *Metrics) RecordLLMStart() {
	m.mu.Lock()
	m.llmStartTime = time.Now()
	m.mu.Unlock()
}

// RecordLLMEnd records the end of a chat-completion call
func (m *Metrics) RecordLLMEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.llmStartTime.IsZero() {
		llmLatency.Observe(time.Since(m.llmStartTime).Seconds())
	}

	llmRequests.WithLabelValues(statusLabel(success)).Inc()
}

// RecordFunctionCall records one backend call for the given short function name
func (m *Metrics) RecordFunctionCall(function string, duration time.Duration, success bool) {
	backendLatency.WithLabelValues(function).Observe(duration.Seconds())
	functionCalls.WithLabelValues(function, statusLabel(success)).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
