// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fastLoginProtection(maxAttempts int, lockout, window time.Duration) *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 || cfg.IPBurst != 5 {
		t.Errorf("IP limits = %v/%d, want 0.5/5", cfg.IPRateLimit, cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute || cfg.AttemptWindow != 15*time.Minute {
		t.Errorf("durations = %v/%v, want 15m each", cfg.LockoutDuration, cfg.AttemptWindow)
	}
}

func TestNewLoginProtection_ZeroConfigUsesDefaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want default 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want default 15m", lp.lockoutDuration)
	}
}

func TestLoginProtection_LockAndExpiry(t *testing.T) {
	lp := fastLoginProtection(3, time.Second, time.Minute)
	email := "editor@acme.test"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("fresh account should not be locked")
	}

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("attempt %d should not lock yet", i+1)
		}
	}
	locked, lockFor := lp.RecordFailedAttempt(email)
	if !locked || lockFor <= 0 {
		t.Fatalf("third failure should lock with positive duration, got %v/%v", locked, lockFor)
	}

	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining <= 0 {
		t.Error("account should report locked with time remaining")
	}

	time.Sleep(time.Second + 100*time.Millisecond)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("lock should expire after the lockout duration")
	}
}

func TestLoginProtection_SuccessResetsCounter(t *testing.T) {
	lp := fastLoginProtection(3, time.Minute, time.Minute)
	email := "editor@acme.test"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining attempts = %d, want full 3 after success", got)
	}
}

func TestLoginProtection_RemainingAttempts(t *testing.T) {
	lp := fastLoginProtection(5, time.Minute, time.Minute)
	email := "editor@acme.test"

	if got := lp.GetRemainingAttempts(email); got != 5 {
		t.Fatalf("remaining = %d, want 5", got)
	}
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp := fastLoginProtection(2, 100*time.Millisecond, time.Minute)
	email := "editor@acme.test"

	lp.RecordFailedAttempt(email)
	_, first := lp.RecordFailedAttempt(email)

	time.Sleep(first + 10*time.Millisecond)

	lp.RecordFailedAttempt(email)
	_, second := lp.RecordFailedAttempt(email)

	if second <= first {
		t.Errorf("second lockout %v should exceed first %v", second, first)
	}
}

func TestLoginProtection_WindowReset(t *testing.T) {
	lp := fastLoginProtection(5, time.Minute, 100*time.Millisecond)
	email := "editor@acme.test"

	lp.RecordFailedAttempt(email)
	if got := lp.GetRemainingAttempts(email); got != 4 {
		t.Fatalf("remaining = %d, want 4", got)
	}

	time.Sleep(150 * time.Millisecond)

	if got := lp.GetRemainingAttempts(email); got != 5 {
		t.Errorf("remaining = %d, want counters dropped after the window", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"remote addr only", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"forwarded single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded chain keeps first", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"real ip", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"forwarded wins over real ip", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
		{"forwarded trimmed", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := getClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginProtection_MiddlewarePassesWithinLimits(t *testing.T) {
	lp := fastLoginProtection(5, time.Minute, time.Minute)
	wrapped := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, httptest.NewRequest(method, "/login", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s /login status = %d, want %d", method, rr.Code, http.StatusOK)
		}
	}
}

func TestLoginProtection_IPBurst(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	for i := 0; i < 5; i++ {
		if !lp.CheckIPRateLimit("192.168.1.100") {
			t.Errorf("request %d should be within burst", i+1)
		}
	}
}
