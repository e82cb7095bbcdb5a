package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORSMiddleware(next, []string{"http://localhost:3000"})

	tests := []struct {
		name            string
		method          string
		origin          string
		wantAllowOrigin string
		wantStatus      int
	}{
		{
			name:            "allowed origin is echoed",
			method:          http.MethodGet,
			origin:          "http://localhost:3000",
			wantAllowOrigin: "http://localhost:3000",
			wantStatus:      http.StatusTeapot,
		},
		{
			name:       "unknown origin gets no allow header",
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusTeapot,
		},
		{
			name:            "preflight short-circuits",
			method:          http.MethodOptions,
			origin:          "http://localhost:3000",
			wantAllowOrigin: "http://localhost:3000",
			wantStatus:      http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/cards", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestWithRecovery(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("credential leaked in panic value")
	})
	handler := withRecovery(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/cards", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
	assert.NotContains(t, rec.Body.String(), "credential leaked", "panic values are logged, not echoed")
}
