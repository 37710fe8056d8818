package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenLimiterBurstThenDeny(t *testing.T) {
	l := newTokenLimiter(60, 3)
	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d inside burst should pass", i)
		}
	}
	if l.allow("10.0.0.1") {
		t.Fatalf("request beyond burst should be denied")
	}
	// Other clients keep their own bucket.
	if !l.allow("10.0.0.2") {
		t.Fatalf("fresh client should pass")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{PerMinute: 60, Burst: 2})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rec.Code)
	}
	if got := errorCode(t, rec); got != "rate_limited" {
		t.Fatalf("code=%q", got)
	}
}

func TestClientIPForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Fatalf("got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}
}
