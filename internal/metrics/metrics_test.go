package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveTransition(t *testing.T) {
	before := testutil.ToFloat64(lifecycleTransitions.WithLabelValues("start", "in-progress"))
	ObserveTransition("start", "in-progress")
	require.Equal(t, before+1, testutil.ToFloat64(lifecycleTransitions.WithLabelValues("start", "in-progress")))
}

func TestAddOrphansDeletedIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(orphansDeleted)
	AddOrphansDeleted(0)
	AddOrphansDeleted(3)
	require.Equal(t, before+3, testutil.ToFloat64(orphansDeleted))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest(http.MethodGet, "/health", http.StatusOK)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "stepwise_http_requests_total")
}
