package cache

import (
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemory(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("country:de", "Germany")
	v, ok := c.Get("country:de")
	if !ok || v != "Germany" {
		t.Errorf("Get = %v, %v; want Germany, true", v, ok)
	}

	c.Delete("country:de")
	if _, ok := c.Get("country:de"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemory(time.Minute)

	c.SetWithTTL("short", "value", -time.Second)
	if _, ok := c.Get("short"); ok {
		t.Error("expired entry must not be returned")
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("Clear must drop all entries")
	}
}
