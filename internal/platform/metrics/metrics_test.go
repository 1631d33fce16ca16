package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveChainVerification(t *testing.T) {
	okBefore := testutil.ToFloat64(chainVerifications.WithLabelValues(ResultOK))
	mismatchBefore := testutil.ToFloat64(chainVerifications.WithLabelValues(ResultMismatch))
	entriesBefore := testutil.ToFloat64(chainMismatches)

	ObserveChainVerification(ResultOK, 0)
	ObserveChainVerification(ResultMismatch, 3)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(chainVerifications.WithLabelValues(ResultOK)))
	assert.Equal(t, mismatchBefore+1, testutil.ToFloat64(chainVerifications.WithLabelValues(ResultMismatch)))
	assert.Equal(t, entriesBefore+3, testutil.ToFloat64(chainMismatches))
}

func TestObserveInvoiceTransition(t *testing.T) {
	before := testutil.ToFloat64(invoiceTransitions.WithLabelValues("ISSUED", ResultError))
	ObserveInvoiceTransition("ISSUED", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(invoiceTransitions.WithLabelValues("ISSUED", ResultError)))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))
	ObserveHTTPRequest("GET", "/health", "200", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")))
}
