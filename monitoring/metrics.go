package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuvsiksha_api_requests_total",
			Help: "Total backend API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yuvsiksha_api_request_duration_seconds",
			Help:    "Duration of backend API requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"endpoint"},
	)

	paymentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuvsiksha_payment_transitions_total",
			Help: "Payment flow state transitions",
		},
		[]string{"from", "to"},
	)

	bookingSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yuvsiksha_booking_submissions_total",
			Help: "Booking submissions by result",
		},
		[]string{"result"},
	)
)

// TrackAPIRequest records one backend request and its duration.
func TrackAPIRequest(endpoint, outcome string, duration time.Duration) {
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// TrackPaymentTransition records a payment flow state change.
func TrackPaymentTransition(from, to string) {
	paymentTransitions.WithLabelValues(from, to).Inc()
}

// TrackBookingSubmission records a booking submit result.
func TrackBookingSubmission(result string) {
	bookingSubmissions.WithLabelValues(result).Inc()
}

// HealthCheck tests one dependency for the health endpoint.
type HealthCheck func() error

func handler(logger *zap.Logger, checks []HealthCheck) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(); err != nil {
				logger.Warn("Health check failed", zap.Error(err))
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Serve exposes the metrics and health endpoints. Blocks until the
// server stops.
func Serve(addr string, logger *zap.Logger, checks ...HealthCheck) {
	logger.Info("Metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler(logger, checks)); err != nil {
		logger.Error("Metrics server stopped", zap.Error(err))
	}
}
