package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testAuthKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testAuthKey, true)
	if len(dev.AuthKey) != 32 {
		t.Errorf("auth key length = %d, want 32", len(dev.AuthKey))
	}
	if len(dev.TrustedOrigins) != 2 {
		t.Fatalf("dev trusted origins = %d, want localhost pair", len(dev.TrustedOrigins))
	}
	for _, origin := range dev.TrustedOrigins {
		// The csrf library expects host:port values, not URLs.
		if strings.HasPrefix(origin, "http") {
			t.Errorf("trusted origin %q must be host:port, not a URL", origin)
		}
		if !strings.Contains(origin, ":") {
			t.Errorf("trusted origin %q missing port", origin)
		}
	}

	prod := DefaultCSRFConfig(testAuthKey, false)
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("production trusted origins = %d, want none", len(prod.TrustedOrigins))
	}
}

func TestSkipCSRF(t *testing.T) {
	var reached bool
	handler := SkipCSRF("/api/v1/status", "/health")(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		}))

	// Skipped and non-skipped paths both reach the handler; the skip
	// only disables the token check for the listed paths.
	for _, path := range []string{"/health", "/admin/pages"} {
		reached = false
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if !reached {
			t.Errorf("handler not reached for %s", path)
		}
	}
}

func TestSkipCSRF_NoPaths(t *testing.T) {
	handler := SkipCSRF()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/menu", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCSRF_AcceptsCustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(testAuthKey, true)
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusForbidden)
	})

	if mw := CSRF(cfg); mw == nil {
		t.Fatal("CSRF returned nil middleware")
	}
}
