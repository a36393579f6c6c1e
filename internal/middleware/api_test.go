// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/olegiv/pagecms-go/internal/auth"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// testAPIDB creates a migrated database with one admin user and one
// active API key. Returns the database and the raw key.
func testAPIDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := store.NewDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	queries := store.New(db)
	ctx := context.Background()

	hash, err := auth.HashPassword("test-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         RoleAdmin,
		Name:         "Admin",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rawKey, prefix, err := model.GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, err = queries.CreateAPIKey(ctx, store.CreateAPIKeyParams{
		Name:      "test key",
		KeyHash:   model.HashAPIKey(rawKey),
		KeyPrefix: prefix,
		CreatedBy: user.ID,
	})
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	return db, rawKey
}

func keyFromContext(t *testing.T) (http.Handler, **store.APIKey) {
	t.Helper()
	var captured *store.APIKey
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetAPIKey(r)
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestAPIKeyAuth(t *testing.T) {
	db, rawKey := testAPIDB(t)
	next, captured := keyFromContext(t)
	handler := APIKeyAuth(db)(next)

	t.Run("valid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		req.Header.Set("Authorization", "Bearer "+rawKey)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if *captured == nil {
			t.Fatal("expected API key in context")
		}
		if (*captured).Name != "test key" {
			t.Errorf("key name = %q", (*captured).Name)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
		var apiErr APIError
		if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if apiErr.Error.Code != "unauthorized" {
			t.Errorf("error code = %q", apiErr.Error.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		req.Header.Set("Authorization", "Bearer not-a-real-key")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})
}

func TestAPIKeyAuthInactiveKey(t *testing.T) {
	db, rawKey := testAPIDB(t)
	queries := store.New(db)

	keys, err := queries.ListAPIKeys(context.Background())
	if err != nil || len(keys) != 1 {
		t.Fatalf("list keys: %v (%d keys)", err, len(keys))
	}
	if err := queries.SetAPIKeyActive(context.Background(), keys[0].ID, false); err != nil {
		t.Fatalf("deactivate key: %v", err)
	}

	next, _ := keyFromContext(t)
	handler := APIKeyAuth(db)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestOptionalAPIKeyAuth(t *testing.T) {
	db, rawKey := testAPIDB(t)
	next, captured := keyFromContext(t)
	handler := OptionalAPIKeyAuth(db)(next)

	t.Run("anonymous passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
		if *captured != nil {
			t.Error("expected no API key in context")
		}
	})

	t.Run("invalid key passes through anonymously", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
		if *captured != nil {
			t.Error("expected no API key in context")
		}
	})

	t.Run("valid key attached", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		req.Header.Set("Authorization", "Bearer "+rawKey)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
		if *captured == nil {
			t.Error("expected API key in context")
		}
	})
}

func TestAPIRateLimit(t *testing.T) {
	handler := APIRateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	apiKey := store.APIKey{ID: 7, Name: "limited"}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
		ctx := context.WithValue(req.Context(), ContextKeyAPIKey, apiKey)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %d", codes[2])
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("X-Real-IP", "198.51.100.7")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rr.Code)
	}
}

func Test_getClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x-real-ip wins", "203.0.113.1", "203.0.113.2", "10.0.0.1:1234", "203.0.113.1"},
		{"x-forwarded-for second", "", "203.0.113.2", "10.0.0.1:1234", "203.0.113.2"},
		{"remote addr fallback", "", "", "10.0.0.1:1234", "10.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
