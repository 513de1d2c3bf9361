package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	handler := RateLimit(1, 3)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
		}
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.2")
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected status %d after burst, got %d", http.StatusTooManyRequests, last)
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	first.Header.Set("X-Real-Ip", "10.0.0.3")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first ip to pass, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	second.Header.Set("X-Real-Ip", "10.0.0.4")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a different ip to have its own bucket, got %d", rec.Code)
	}
}
