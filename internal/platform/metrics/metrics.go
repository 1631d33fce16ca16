package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compta_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compta_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	invoiceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compta_invoice_transitions_total",
		Help: "Invoice status transitions by target status and result",
	}, []string{"status", "result"})

	chainVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compta_invoice_chain_verifications_total",
		Help: "Invoice chain verifications by result",
	}, []string{"result"})

	chainMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compta_invoice_chain_mismatches_total",
		Help: "Mismatching chain entries found by verification",
	})

	membershipOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compta_membership_operations_total",
		Help: "Membership operations by kind and result",
	}, []string{"operation", "result"})
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultMismatch = "mismatch"
)

// Result maps an error to the ok/error label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveInvoiceTransition counts an attempted move of an invoice to status.
func ObserveInvoiceTransition(status string, err error) {
	invoiceTransitions.WithLabelValues(status, Result(err)).Inc()
}

// ObserveChainVerification counts one verification run and its mismatching entries.
func ObserveChainVerification(result string, mismatches int) {
	chainVerifications.WithLabelValues(result).Inc()
	if mismatches > 0 {
		chainMismatches.Add(float64(mismatches))
	}
}

// ObserveMembershipOperation counts add, role change, activation and switch operations.
func ObserveMembershipOperation(operation string, err error) {
	membershipOperations.WithLabelValues(operation, Result(err)).Inc()
}
