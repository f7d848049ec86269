// Package metrics exposes Prometheus collectors for model calls, service use
// cases and HTTP traffic.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexanderramin/goalplan/internal/llm"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goalplan"

// Metrics implements llm.Observer and service.UseCaseObserver.
type Metrics struct {
	llmCalls     *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
	llmTokens    *prometheus.CounterVec
	useCases     *prometheus.CounterVec
	useCaseTime  *prometheus.HistogramVec
	violations   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	_ llm.Observer            = (*Metrics)(nil)
	_ service.UseCaseObserver = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// Labels: task (full_plan, regenerate_task, playground), provider, status (ok, err).
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Total number of generation service calls",
		}, []string{"task", "provider", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Latency of generation service calls including retries",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}, []string{"task", "provider"}),
		// Labels: kind (prompt, completion).
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens reported by the generation service",
		}, []string{"task", "kind"}),
		useCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "use_case_total",
			Help:      "Total number of service use case runs",
		}, []string{"use_case", "status"}),
		useCaseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "use_case_duration_seconds",
			Help:      "Duration of service use case runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "constraint_violations_total",
			Help:      "Constraint violations found in generated output, by code",
		}, []string{"use_case", "code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.llmCalls, m.llmDuration, m.llmTokens,
		m.useCases, m.useCaseTime, m.violations,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) OnCallComplete(event llm.LLMCallEvent) {
	task := string(event.Task)
	m.llmCalls.WithLabelValues(task, string(event.Provider), status(event.Success)).Inc()
	m.llmDuration.WithLabelValues(task, string(event.Provider)).Observe(float64(event.LatencyMs) / 1000)
	if event.Success {
		m.llmTokens.WithLabelValues(task, "prompt").Add(float64(event.PromptTokens))
		m.llmTokens.WithLabelValues(task, "completion").Add(float64(event.CompletionTokens))
	}
}

func (m *Metrics) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	m.useCases.WithLabelValues(event.Name, status(event.Success)).Inc()
	m.useCaseTime.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	var cve *validation.ConstraintViolationError
	if errors.As(event.Err, &cve) {
		for _, v := range cve.Violations {
			m.violations.WithLabelValues(event.Name, string(v.Code)).Inc()
		}
	}
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "err"
}
