package obs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentLabelsByPattern(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Instrument(mux)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "GET /users/{id}", "418")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestAuthCounters(t *testing.T) {
	m := New()
	m.Login("success")
	m.Login("bad_password")
	m.Login("bad_password")
	m.Refresh("success")
	m.Session("invalid_token")
	m.Denied("GET /auth/roles")

	require.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("bad_password")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("invalid_token")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.gateDenials.WithLabelValues("GET /auth/roles")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Login("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `auth_login_total{outcome="success"} 1`))
	require.True(t, strings.Contains(string(body), "go_goroutines"))
}
