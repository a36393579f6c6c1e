package config

import (
	"strings"
	"testing"
)

const validSecret = "Abcdefghij1234567890!@#$%^&*()_+"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PAGECMS_SESSION_SECRET", validSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "./data/pagecms.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.UseRedisCache() {
		t.Error("redis should be off by default")
	}
	if cfg.CacheTTL != 3600 {
		t.Errorf("CacheTTL = %d", cfg.CacheTTL)
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("PAGECMS_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without session secret")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("PAGECMS_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("PAGECMS_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for known default secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGECMS_SERVER_HOST", "0.0.0.0")
	t.Setenv("PAGECMS_SERVER_PORT", "9000")
	t.Setenv("PAGECMS_ENV", "production")
	t.Setenv("PAGECMS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PAGECMS_SITE_URL", "https://example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddr() != "0.0.0.0:9000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("production env reported as development")
	}
	if !cfg.UseRedisCache() {
		t.Error("redis URL set but UseRedisCache is false")
	}
	if cfg.SiteURL != "https://example.com" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
}
