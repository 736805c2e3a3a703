package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRequest("token", "ok")
	m.ObserveRequest("token", "ok")
	m.ObserveRequest("token", "invalid_client")
	m.TokenIssued("access_token")
	m.TokensPurged("refresh_token", 3)
	m.TokensPurged("refresh_token", 0)
	m.TokenCollision("access_token")

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("token", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("token", "invalid_client")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("access_token")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.tokensPurged.WithLabelValues("refresh_token")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.tokenCollisions.WithLabelValues("access_token")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("token", "ok")
		m.TokenIssued("access_token")
		m.TokensPurged("access_token", 1)
		m.TokenCollision("access_token")
	})
	require.Nil(t, m.Registry())
	require.NotNil(t, m.Handler())
}

func TestHandler(t *testing.T) {
	m := New()
	m.TokenIssued("access_token")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `grantd_tokens_issued_total{kind="access_token"} 1`)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
