package stats

import (
	"testing"
	"time"
)

func TestTTLCacheGetSet(t *testing.T) {
	c := newTTLCache[int](time.Minute)
	if _, ok := c.get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.set("a", 42)
	v, ok := c.get("a")
	if !ok || v != 42 {
		t.Fatalf("expected hit with value 42, got %v, %v", v, ok)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache[string](time.Millisecond)
	c.set("k", "v")
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.get("k"); ok {
		t.Fatal("expected entry to have expired")
	}
}

func TestTTLCacheOverwrite(t *testing.T) {
	c := newTTLCache[int](time.Minute)
	c.set("k", 1)
	c.set("k", 2)
	v, ok := c.get("k")
	if !ok || v != 2 {
		t.Fatalf("expected last writer to win, got %v, %v", v, ok)
	}
}
