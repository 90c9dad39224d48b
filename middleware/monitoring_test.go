package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func TestMonitorMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware)
	r.HandleFunc("/api/v1/{function}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	before := counterValue(httpRequestsTotal.WithLabelValues("/api/v1/{function}", http.MethodPost, "401"))
	rejected := counterValue(authRejections.WithLabelValues("401_unauthorized"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/getChores", nil))

	assert.Equal(t, before+1, counterValue(httpRequestsTotal.WithLabelValues("/api/v1/{function}", http.MethodPost, "401")))
	assert.Equal(t, rejected+1, counterValue(authRejections.WithLabelValues("401_unauthorized")))
}

func TestBasicAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		cfgUser    string
		status     int
	}{
		{"valid", "admin", "secret", true, "admin", http.StatusOK},
		{"wrong password", "admin", "nope", true, "admin", http.StatusUnauthorized},
		{"no credentials", "", "", false, "admin", http.StatusUnauthorized},
		{"unconfigured", "", "", true, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()

			BasicAuthMiddleware(tt.cfgUser, "secret")(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPprofSecurityMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.Header.Set("X-Pprof-Secret", "s3cret")

	rec := httptest.NewRecorder()
	PprofSecurityMiddleware("s3cret")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	PprofSecurityMiddleware("other")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	PprofSecurityMiddleware("")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
