package recipon

import (
	"fmt"
	"testing"
)

func TestMemoCacheComputesOnce(t *testing.T) {
	c := newMemoCache("test_once", 8)

	calls := 0
	compute := func() (string, bool) {
		calls++
		return "鶏の唐揚げ", true
	}

	for range 3 {
		v, ok := c.memoize("https://example.com/karaage", compute)
		if !ok || v != "鶏の唐揚げ" {
			t.Fatalf("memoize = (%q, %v), want (鶏の唐揚げ, true)", v, ok)
		}
	}

	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestMemoCacheStoresNegativeResults(t *testing.T) {
	c := newMemoCache("test_negative", 8)

	calls := 0
	compute := func() (string, bool) {
		calls++
		return "", false
	}

	for range 3 {
		if v, ok := c.memoize("https://example.com/broken", compute); ok || v != "" {
			t.Fatalf("memoize = (%q, %v), want empty negative result", v, ok)
		}
	}

	if calls != 1 {
		t.Errorf("failed lookup recomputed %d times, want 1", calls)
	}
}

func TestMemoCacheKeysIndependent(t *testing.T) {
	c := newMemoCache("test_keys", 8)

	for _, key := range []string{"a", "b", "a", "b"} {
		key := key
		c.memoize(key, func() (string, bool) { return "title for " + key, true })
	}

	if got, _ := c.memoize("a", func() (string, bool) { return "recomputed", true }); got != "title for a" {
		t.Errorf("key a = %q, want cached value", got)
	}
	if c.len() != 2 {
		t.Errorf("cache len = %d, want 2", c.len())
	}
}

func TestMemoCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newMemoCache("test_evict", 3)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("url-%d", i)
		c.memoize(key, func() (string, bool) { return key, true })
	}

	// Touch url-0 so url-1 becomes the eviction candidate
	c.memoize("url-0", func() (string, bool) { return "should not recompute", false })

	c.memoize("url-3", func() (string, bool) { return "url-3", true })

	if !c.contains("url-0") {
		t.Error("recently read url-0 should survive eviction")
	}
	if c.contains("url-1") {
		t.Error("least recently used url-1 should have been evicted")
	}
	if !c.contains("url-2") || !c.contains("url-3") {
		t.Error("url-2 and url-3 should be present")
	}
}

func TestMemoCacheCapacityBound(t *testing.T) {
	const capacity = 512
	c := newMemoCache("test_bound", capacity)

	for i := 0; i < capacity; i++ {
		key := fmt.Sprintf("url-%d", i)
		c.memoize(key, func() (string, bool) { return key, true })
	}

	// Reading the first insert makes url-1 the least recently used, so the
	// 513th key must evict url-1, not url-0
	c.memoize("url-0", func() (string, bool) { return "recompute", false })
	c.memoize("url-overflow", func() (string, bool) { return "overflow", true })

	if c.len() != capacity {
		t.Errorf("cache len = %d, want %d", c.len(), capacity)
	}
	if !c.contains("url-0") {
		t.Error("recently accessed first insert should survive eviction")
	}
	if c.contains("url-1") {
		t.Error("least recently used entry should have been evicted")
	}
	if !c.contains("url-overflow") {
		t.Error("newest entry should be present")
	}
}
