package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("Get(missing) = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(val) != "value" {
		t.Errorf("Get = %q, want value", val)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("expired Get = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, err := c.Get(ctx, key); err != ErrCacheMiss {
			t.Errorf("Get(%s) after Clear = %v, want ErrCacheMiss", key, err)
		}
	}
}

func TestMemoryCacheValueIsolation(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	original := []byte("immutable")
	if err := c.Set(ctx, "key", original, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	original[0] = 'X'

	val, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(val) != "immutable" {
		t.Errorf("cached value mutated: %q", val)
	}

	val[0] = 'Y'
	again, _ := c.Get(ctx, "key")
	if string(again) != "immutable" {
		t.Errorf("cached value mutated through returned copy: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "key", nil, 0); err != ErrCacheClosed {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
	// Closing twice is safe.
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key", []byte("v"), 0)
	c.Get(ctx, "key")
	c.Get(ctx, "nope")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", stats.HitRate)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}

func TestManagerCoarseInvalidation(t *testing.T) {
	m := NewManager(NewSimpleMemoryCache(time.Minute), time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.SetPage(ctx, "about", []byte("<html>about</html>"))
	m.SetPage(ctx, "", []byte("<html>home</html>"))
	m.SetSitemap(ctx, []byte("<urlset/>"))

	if _, ok := m.GetPage(ctx, "about"); !ok {
		t.Fatal("page not cached")
	}
	if _, ok := m.GetSitemap(ctx); !ok {
		t.Fatal("sitemap not cached")
	}

	m.ClearAll(ctx)

	if _, ok := m.GetPage(ctx, "about"); ok {
		t.Error("page survived ClearAll")
	}
	if _, ok := m.GetPage(ctx, ""); ok {
		t.Error("homepage survived ClearAll")
	}
	if _, ok := m.GetSitemap(ctx); ok {
		t.Error("sitemap survived ClearAll")
	}
}

func TestFactoryFallback(t *testing.T) {
	// Unreachable Redis must fall back to memory rather than fail.
	c := NewCache(Config{
		Type:       "redis",
		RedisURL:   "redis://127.0.0.1:1/0",
		DefaultTTL: time.Minute,
	})
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected memory fallback, got %T", c)
	}
}
