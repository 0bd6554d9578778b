package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exerciseCache runs the behavior every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	// Overwrite
	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, _, _ = c.Get(ctx, "k")
	if string(data) != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry should be a miss, got hit=%v err=%v", hit, err)
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(16)
	if err != nil {
		t.Fatalf("NewMemoryCache error: %v", err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatalf("NewMemoryCache error: %v", err)
	}
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = c.Get(ctx, "a") // a is now most recently used
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("recently used entry should survive")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	data, _, _ := c.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("cached value changed with caller buffer: %q", data)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: "none"})
	if err != nil {
		t.Fatalf("Open(none) error: %v", err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T", c)
	}

	c, err = Open(ctx, Options{Backend: "Memory", MemoryEntries: 4})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("Open(memory) = %T", c)
	}

	c, err = Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(default) error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(default) = %T", c)
	}

	if _, err := Open(ctx, Options{Backend: "file"}); err == nil {
		t.Error("file backend without directory should fail")
	}
	if _, err := Open(ctx, Options{Backend: "memcached"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Accept header is part of the document key
	d1 := k.DocumentKey("https://pypi.org/simple/requests/", "text/html")
	d2 := k.DocumentKey("https://pypi.org/simple/requests/", "application/vnd.pypi.simple.v1+json")
	if d1 == d2 {
		t.Error("Different Accept values should produce different keys")
	}
	if !strings.HasPrefix(d1, "doc:") {
		t.Errorf("DocumentKey should start with doc:, got %s", d1)
	}
	if d1 != k.DocumentKey("https://pypi.org/simple/requests/", "text/html") {
		t.Error("DocumentKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "upstream:1:")

	docKey := scoped.DocumentKey("https://h/simple/", "text/html")
	if docKey != "upstream:1:"+inner.DocumentKey("https://h/simple/", "text/html") {
		t.Errorf("ScopedKeyer DocumentKey should be prefixed: %s", docKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.DocumentKey("https://h/simple/", "text/html")
	if key != "prefix:"+NewDefaultKeyer().DocumentKey("https://h/simple/", "text/html") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
