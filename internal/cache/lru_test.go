package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[string](2, time.Minute)
	c.Set("a", "1")

	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("missing key must not be found")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive, it was used most recently")
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](10, time.Millisecond)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must not be returned")
	}

	c.Set("b", 2)
	time.Sleep(5 * time.Millisecond)
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", removed)
	}
}

func TestClear(t *testing.T) {
	c := New[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("size after clear = %d", c.Size())
	}
}
