package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, rpm, burst int) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: rpm, BurstSize: burst})
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiterBurstAndRefill(t *testing.T) {
	rl, clock := newTestLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request beyond burst allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other client should have its own bucket")
	}

	clock.Advance(time.Second) // 60 rpm refills one token per second
	if !rl.Allow("1.2.3.4") {
		t.Error("expected a token after refill")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, 60, 3)
	rl.Allow("1.2.3.4")
	clock.Advance(10 * time.Minute)
	rl.Allow("5.6.7.8")

	if removed := rl.cleanup(); removed != 1 {
		t.Errorf("cleanup() removed %d, want 1", removed)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/journal", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After on limited response")
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		trust  bool
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", false, nil, "192.168.1.1:1234", "192.168.1.1"},
		{"forwarded ignored without proxy", false, map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:1", "10.0.0.1"},
		{"real ip ignored without proxy", false, map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "10.0.0.1"},
		{"forwarded rightmost hop", true, map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.5"}, "10.0.0.1:1", "203.0.113.5"},
		{"forwarded skips invalid hop", true, map[string]string{"X-Forwarded-For": "203.0.113.5, junk"}, "10.0.0.1:1", "203.0.113.5"},
		{"invalid forwarded falls back", true, map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2:1", "10.0.0.2"},
		{"real ip", true, map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "198.51.100.7"},
		{"garbage remote", false, nil, "garbage", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req, tt.trust); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/journal", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("rotating X-Forwarded-For escaped the limit: status %d", last)
	}
}
