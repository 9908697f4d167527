package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestCache(t *testing.T, capacity int) *Cache {
	t.Helper()
	cache, err := NewCache(t.TempDir(), capacity)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return cache
}

func fillSlot(t *testing.T, cache *Cache, uri, content string) {
	t.Helper()
	if err := os.WriteFile(cache.Path(uri), []byte(content), 0o644); err != nil {
		t.Fatalf("writing slot: %v", err)
	}
	cache.Add(uri)
}

func TestCachePath(t *testing.T) {
	cache := newTestCache(t, 4)

	const uri = "https://example.org/reads.fastq.gz"
	p := cache.Path(uri)
	if p != cache.Path(uri) {
		t.Error("Path is not deterministic")
	}
	if !strings.HasSuffix(p, ".gz") {
		t.Errorf("Path %q should keep the .gz extension", p)
	}
	if other := cache.Path("https://example.org/other.fastq.gz"); other == p {
		t.Error("distinct URIs share a slot")
	}
}

func TestCachePath_JunkExtension(t *testing.T) {
	cache := newTestCache(t, 4)

	p := cache.Path("https://example.org/reads.fastq?download=true")
	if ext := filepath.Ext(p); ext != "" {
		t.Errorf("query-string tail kept as extension %q", ext)
	}
}

func TestCacheGetAdd(t *testing.T) {
	cache := newTestCache(t, 4)
	const uri = "fake://bucket/reads.fastq"

	if _, ok := cache.Get(uri); ok {
		t.Fatal("hit on empty cache")
	}

	fillSlot(t, cache, uri, "@r1\nACGT\n+\nIIII\n")

	p, ok := cache.Get(uri)
	if !ok {
		t.Fatal("miss after Add")
	}
	if p != cache.Path(uri) {
		t.Errorf("Get returned %q, want %q", p, cache.Path(uri))
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestCacheEviction(t *testing.T) {
	cache := newTestCache(t, 2)

	uris := []string{
		"fake://bucket/a.fastq",
		"fake://bucket/b.fastq",
		"fake://bucket/c.fastq",
	}
	for _, uri := range uris {
		fillSlot(t, cache, uri, uri)
	}

	if _, err := os.Stat(cache.Path(uris[0])); !os.IsNotExist(err) {
		t.Error("evicted entry's file still on disk")
	}
	if _, ok := cache.Get(uris[1]); !ok {
		t.Error("recent entry evicted")
	}
	if _, ok := cache.Get(uris[2]); !ok {
		t.Error("newest entry evicted")
	}
	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2", cache.Len())
	}
}

func TestCacheRediscovery(t *testing.T) {
	dir := t.TempDir()
	const uri = "https://example.org/reads.fastq.gz"

	first, err := NewCache(dir, 4)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	fillSlot(t, first, uri, "payload")

	second, err := NewCache(dir, 4)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if second.Len() != 0 {
		t.Fatalf("fresh index Len = %d, want 0", second.Len())
	}

	p, ok := second.Get(uri)
	if !ok {
		t.Fatal("file from an earlier run not rediscovered")
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("reading rediscovered file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want %q", data, "payload")
	}
	if second.Len() != 1 {
		t.Errorf("Len after rediscovery = %d, want 1", second.Len())
	}
}

func TestCacheGet_FileRemovedBehindIndex(t *testing.T) {
	cache := newTestCache(t, 4)
	const uri = "fake://bucket/gone.fastq"

	fillSlot(t, cache, uri, "payload")
	if err := os.Remove(cache.Path(uri)); err != nil {
		t.Fatalf("removing slot: %v", err)
	}

	if _, ok := cache.Get(uri); ok {
		t.Error("hit for a file removed behind the index")
	}
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0 after dropping the stale entry", cache.Len())
	}
}
