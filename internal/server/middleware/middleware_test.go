package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(okHandler)

	tests := []struct {
		name        string
		origin      string
		method      string
		allowOrigin string
	}{
		{"allow-listed origin", "http://localhost:3000", http.MethodGet, "http://localhost:3000"},
		{"no origin", "", http.MethodGet, "*"},
		{"unknown origin", "https://evil.example", http.MethodGet, ""},
		{"preflight", "http://localhost:3000", http.MethodOptions, "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestCORS_PreflightDoesNotReachHandler(t *testing.T) {
	called := false
	handler := CORS(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.False(t, called)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), "path=/health")
	assert.Contains(t, buf.String(), "status=418")
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/explorer/latest-proof/{prover}", okHandler)

	for _, prover := range []string{"0xa", "0xb"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/explorer/latest-proof/"+prover, nil))
	}

	count := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/explorer/latest-proof/{prover}", "200"))
	assert.Equal(t, 2.0, count)

	n, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
