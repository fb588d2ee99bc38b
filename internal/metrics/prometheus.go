// Package metrics provides Prometheus metrics for the mission client.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	gatewayCallsTotal   *prometheus.CounterVec
	gatewayCallDuration *prometheus.HistogramVec

	syncTicksTotal   *prometheus.CounterVec
	droppedRecords   prometheus.Counter
	missionsByStatus *prometheus.GaugeVec
	snapshotGen      prometheus.Gauge
	reachability     prometheus.Gauge
	creationsTotal   *prometheus.CounterVec
}

var globalMetrics *Metrics

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	if globalMetrics != nil {
		return globalMetrics
	}

	globalMetrics = &Metrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionctl_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "missionctl_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		requestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "missionctl_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		gatewayCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionctl_gateway_calls_total",
				Help: "Total number of calls to the remote mission service by outcome",
			},
			[]string{"operation", "outcome"},
		),
		gatewayCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "missionctl_gateway_call_duration_seconds",
				Help:    "Remote mission service call duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		syncTicksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionctl_sync_ticks_total",
				Help: "Total number of sync ticks by trigger",
			},
			[]string{"trigger"},
		),
		droppedRecords: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "missionctl_dropped_records_total",
				Help: "Total number of malformed mission records dropped during sync",
			},
		),
		missionsByStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "missionctl_missions",
				Help: "Number of missions in the current snapshot by status",
			},
			[]string{"status"},
		),
		snapshotGen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "missionctl_snapshot_generation",
				Help: "Generation of the current mission snapshot",
			},
		),
		reachability: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "missionctl_remote_reachable",
				Help: "Reachability of the remote service (1 = reachable, 0 = unreachable, -1 = pending)",
			},
		),
		creationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionctl_creations_total",
				Help: "Total number of mission submissions by result",
			},
			[]string{"result"},
		),
	}

	globalMetrics.reachability.Set(-1)

	return globalMetrics
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncRequestsInFlight increments the in-flight requests counter.
func (m *Metrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter.
func (m *Metrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

// RecordGatewayCall records one remote call and its classified outcome.
func (m *Metrics) RecordGatewayCall(operation string, outcome model.Outcome, duration time.Duration) {
	m.gatewayCallsTotal.WithLabelValues(operation, outcome.String()).Inc()
	m.gatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTick counts a sync tick; trigger is "timer" or "forced".
func (m *Metrics) RecordTick(trigger string) {
	m.syncTicksTotal.WithLabelValues(trigger).Inc()
}

// RecordDroppedRecords adds n malformed records to the dropped counter.
func (m *Metrics) RecordDroppedRecords(n int) {
	if n > 0 {
		m.droppedRecords.Add(float64(n))
	}
}

// RecordSnapshot publishes the aggregates of a freshly installed snapshot.
func (m *Metrics) RecordSnapshot(snap *model.MissionSnapshot) {
	for _, s := range model.AllStatuses {
		m.missionsByStatus.WithLabelValues(string(s)).Set(float64(snap.Count(s)))
	}
	m.snapshotGen.Set(float64(snap.Generation()))
}

// SetReachability sets the reachability gauge.
func (m *Metrics) SetReachability(signal model.ReachabilitySignal) {
	switch signal {
	case model.ReachabilityReachable:
		m.reachability.Set(1)
	case model.ReachabilityUnreachable:
		m.reachability.Set(0)
	default:
		m.reachability.Set(-1)
	}
}

// RecordCreation counts a finished submission; result is a creation state.
func (m *Metrics) RecordCreation(result model.CreationState) {
	m.creationsTotal.WithLabelValues(string(result)).Inc()
}

// MetricsServer provides a separate HTTP server for Prometheus metrics.
type MetricsServer struct {
	server *http.Server
	logger *zap.Logger
}

// NewMetricsServer creates a new metrics server.
func NewMetricsServer(port int, path string, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the metrics server.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("starting metrics server", zap.String("addr", ms.server.Addr))
	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

// MetricsMiddleware creates middleware that records HTTP metrics.
// Paths are labelled by route template to keep mission IDs out of label values.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncRequestsInFlight()
			defer m.DecRequestsInFlight()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.RecordHTTPRequest(r.Method, routeLabel(r), rw.statusCode, time.Since(start))
		})
	}
}

func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
