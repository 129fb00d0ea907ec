package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d blocked within limit", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("attempt over limit allowed")
	}

	// Other keys are unaffected.
	if !l.Allow("other") {
		t.Error("unrelated key blocked")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt allowed")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt blocked after reset")
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
		{"remote addr with port", "203.0.113.9:4312", "", "", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"real ip", "10.0.0.1:80", "", "198.51.100.8", "198.51.100.8"},
		{"forwarded wins over real ip", "10.0.0.1:80", "198.51.100.7", "198.51.100.8", "198.51.100.7"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/auth/signin", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSignInLimiter(t *testing.T) {
	sl := NewSignInLimiter()

	r := httptest.NewRequest("POST", "/auth/signin", nil)
	r.RemoteAddr = "203.0.113.9:4312"

	// The per-email window is the tighter one: five tries.
	for i := 0; i < 5; i++ {
		if ok, reason := sl.Check(r, "victim@example.com"); !ok {
			t.Fatalf("attempt %d blocked: %s", i+1, reason)
		}
	}
	if ok, _ := sl.Check(r, "victim@example.com"); ok {
		t.Error("sixth attempt for the same account allowed")
	}

	// Case and whitespace do not dodge the email counter.
	if ok, _ := sl.Check(r, "  VICTIM@example.com "); ok {
		t.Error("case variant dodged the per-email limit")
	}

	sl.ResetEmail("victim@example.com")
	if ok, reason := sl.Check(r, "victim@example.com"); !ok {
		t.Errorf("attempt blocked after reset: %s", reason)
	}
}
