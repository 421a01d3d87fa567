package cache

import (
	"testing"
	"time"
)

func Test_Cache(t *testing.T) {
	c, err := New(Config{MaxEntries: 16, TTL: time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, exists := c.Lookup("q", "d"); exists {
		t.Fatal("expected miss on empty cache")
	}

	c.Store("q", "d", 0.75)

	score, exists := c.Lookup("q", "d")
	if !exists {
		t.Fatal("expected hit after store")
	}

	if score != 0.75 {
		t.Errorf("got %f, want 0.75", score)
	}

	// The length prefix keeps shifted pairs distinct.
	c.Store("ab", "c", 1)
	if _, exists := c.Lookup("a", "bc"); exists {
		t.Error("expected distinct keys for shifted pairs")
	}

	c.Clear()

	if _, exists := c.Lookup("q", "d"); exists {
		t.Fatal("expected miss after clear")
	}
}
