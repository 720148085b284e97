package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitHandlerAllowsWithinBurst(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(1), 3)
	handler := RateLimitHandler(rl, okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
		req.RemoteAddr = "192.168.1.10:54321"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestRateLimitHandlerRejectsOverBurst(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(0.001), 1)
	handler := RateLimitHandler(rl, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.RemoteAddr = "192.168.1.10:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header")
	}
}

func TestRateLimitHandlerIsolatesClients(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(0.001), 1)
	handler := RateLimitHandler(rl, okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	first.RemoteAddr = "192.168.1.10:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the first client to be limited, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	second.RemoteAddr = "192.168.1.20:54321"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("a different client must not share the bucket, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr only", "10.0.0.5:1234", "", "", "10.0.0.5"},
		{"x-forwarded-for single", "10.0.0.5:1234", "203.0.113.7", "", "203.0.113.7"},
		{"x-forwarded-for chain", "10.0.0.5:1234", "203.0.113.7, 10.0.0.1", "", "203.0.113.7"},
		{"x-real-ip", "10.0.0.5:1234", "", "203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Fatalf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
