package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if !rl.allow("1.2.3.4", start) || !rl.allow("1.2.3.4", start.Add(time.Second)) {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.2.3.4", start.Add(2*time.Second)) {
		t.Error("third request in the window should be refused")
	}
	if !rl.allow("5.6.7.8", start.Add(2*time.Second)) {
		t.Error("other clients have their own budget")
	}
	if !rl.allow("1.2.3.4", start.Add(61*time.Second)) {
		t.Error("a new window should reset the budget")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.allow("1.2.3.4", start)

	rl.cleanupStaleEntries(start.Add(11 * time.Minute))
	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct client", "203.0.113.5:4321", "", "203.0.113.5"},
		{"untrusted peer ignores header", "203.0.113.5:4321", "198.51.100.1", "203.0.113.5"},
		{"trusted proxy forwards", "127.0.0.1:8080", "198.51.100.1, 10.0.0.1", "198.51.100.1"},
		{"trusted proxy bad header", "10.1.2.3:80", "not-an-ip", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
