package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter(inFlight *float64) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/query", func(w http.ResponseWriter, _ *http.Request) {
		if inFlight != nil {
			*inFlight = testutil.ToFloat64(HTTPInFlight)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	r.Get("/filings/{cik}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	h := newRouter(nil)

	tests := []struct {
		method string
		path   string
		route  string
		status string
	}{
		{http.MethodPost, "/v1/query", "/v1/query", "200"},
		{http.MethodGet, "/filings/0000320193", "/filings/{cik}", "404"},
		{http.MethodPost, "/v1/search", "/v1/search", "502"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))
			if after-before != 1 {
				t.Errorf("requests_total{%s %s %s} grew by %v, want 1", tt.method, tt.route, tt.status, after-before)
			}
		})
	}

	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_PathParamsDoNotLeakIntoLabels(t *testing.T) {
	h := newRouter(nil)
	for _, cik := range []string{"1", "2", "3"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/filings/"+cik, http.NoBody))
	}
	if v := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/filings/1", "404")); v != 0 {
		t.Errorf("raw path used as label: %v", v)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	h := newRouter(nil)
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	if after-before != 1 {
		t.Errorf("unmatched grew by %v, want 1", after-before)
	}
}

func TestMiddleware_InFlight(t *testing.T) {
	var seen float64
	h := newRouter(&seen)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/query", http.NoBody))

	if seen < 1 {
		t.Errorf("in-flight during request = %v, want >= 1", seen)
	}
	if v := testutil.ToFloat64(HTTPInFlight); v != 0 {
		t.Errorf("in-flight after request = %v, want 0", v)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
