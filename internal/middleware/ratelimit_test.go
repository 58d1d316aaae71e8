package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/freshplate/freshplate/internal/cache"
)

func newRateLimitedHandler(t *testing.T, limiter IPRateLimiter, enabled bool) http.Handler {
	t.Helper()
	return RateLimitIP(RateLimitConfig{
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Limiter: limiter,
		Enabled: enabled,
		Scope:   "signin",
		RPM:     1,
		Burst:   2,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitIP_Redis(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := cache.New(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	handler := newRateLimitedHandler(t, c, true)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "192.0.2.10:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if i == 2 {
			if rec.Header().Get("Retry-After") == "" {
				t.Error("Retry-After header missing on 429")
			}
			if rec.Header().Get("X-RateLimit-Limit") != "1" {
				t.Errorf("X-RateLimit-Limit = %q, want 1", rec.Header().Get("X-RateLimit-Limit"))
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("status codes = %v, want %v", codes, want)
		}
	}

	// A forged X-Forwarded-For does not open a fresh bucket.
	for _, forged := range []string{"198.51.100.7", "198.51.100.8, 10.0.0.1"} {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "192.0.2.10:51234"
		req.Header.Set("X-Forwarded-For", forged)
		req.Header.Set("X-Real-IP", forged)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("forged forwarding header %q: status = %d, want 429", forged, rec.Code)
		}
	}

	// A different peer address has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "192.0.2.11:40000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) CheckIPRateLimit(ctx context.Context, scope, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func TestRateLimitIP_FailOpenAndDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limiter IPRateLimiter
		enabled bool
	}{
		{"limiter error", failingLimiter{}, true},
		{"disabled", failingLimiter{}, false},
		{"nil limiter", nil, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := newRateLimitedHandler(t, tt.limiter, tt.enabled)
			for i := 0; i < 5; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signin", nil))
				if rec.Code != http.StatusOK {
					t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
				}
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr with port", "192.0.2.1:1234", "", "", "192.0.2.1"},
		{"remote addr without port", "192.0.2.1", "", "", "192.0.2.1"},
		{"x-forwarded-for ignored", "10.0.0.1:1", "198.51.100.7, 10.0.0.2", "", "10.0.0.1"},
		{"x-real-ip ignored", "10.0.0.1:1", "", "203.0.113.5", "10.0.0.1"},
		{"ipv6", "[2001:db8::1]:443", "", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
