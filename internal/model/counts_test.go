package model

import (
	"encoding/json"
	"testing"
)

// TestCounts tests the insertion-ordered counter.
func TestCounts(t *testing.T) {
	t.Parallel()

	t.Run("zero value is usable", func(t *testing.T) {
		t.Parallel()

		var c Counts
		c.Inc("a")
		if c.Get("a") != 1 {
			t.Errorf("expected 1, got %d", c.Get("a"))
		}
	})

	t.Run("keys keep first-seen order", func(t *testing.T) {
		t.Parallel()

		c := NewCounts()
		c.Inc("b")
		c.Inc("a")
		c.Inc("b")
		c.Inc("c")

		keys := c.Keys()
		expected := []string{"b", "a", "c"}
		if len(keys) != len(expected) {
			t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
		}
		for i := range expected {
			if keys[i] != expected[i] {
				t.Errorf("key %d: got %q, expected %q", i, keys[i], expected[i])
			}
		}
	})

	t.Run("total sums all counts", func(t *testing.T) {
		t.Parallel()

		c := NewCounts()
		c.Add("a", 3)
		c.Add("b", 4)
		if c.Total() != 7 {
			t.Errorf("expected total 7, got %d", c.Total())
		}
	})

	t.Run("nil counts are empty", func(t *testing.T) {
		t.Parallel()

		var c *Counts
		if c.Len() != 0 || c.Total() != 0 || c.Get("x") != 0 {
			t.Error("expected nil counts to behave as empty")
		}
		if c.Keys() != nil {
			t.Error("expected nil keys")
		}
	})
}

// TestCountsMerge tests merging counts key-wise.
func TestCountsMerge(t *testing.T) {
	t.Parallel()

	a := NewCounts()
	a.Add("Google Analytics (GoogleAnalytics)", 2)
	a.Add("Hotjar (Hotjar)", 1)

	b := NewCounts()
	b.Add("Meta Pixel (Facebook)", 5)
	b.Add("Google Analytics (GoogleAnalytics)", 1)

	merged := NewCounts()
	merged.Merge(a)
	merged.Merge(b)
	merged.Merge(nil)

	tests := []struct {
		key  string
		want int
	}{
		{"Google Analytics (GoogleAnalytics)", 3},
		{"Hotjar (Hotjar)", 1},
		{"Meta Pixel (Facebook)", 5},
	}
	for _, tt := range tests {
		if got := merged.Get(tt.key); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.key, got, tt.want)
		}
	}

	keys := merged.Keys()
	if keys[2] != "Meta Pixel (Facebook)" {
		t.Errorf("expected new key appended last, got %v", keys)
	}
}

// TestCountsSorted tests that sorting is by count descending and stable.
func TestCountsSorted(t *testing.T) {
	t.Parallel()

	c := NewCounts()
	c.Add("first", 1)
	c.Add("second", 3)
	c.Add("third", 1)
	c.Add("fourth", 3)
	c.Add("fifth", 2)

	sorted := c.Sorted()
	expected := []string{"second", "fourth", "fifth", "first", "third"}
	if len(sorted) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(sorted))
	}
	for i, name := range expected {
		if sorted[i].Name != name {
			t.Errorf("position %d: got %q, expected %q", i, sorted[i].Name, name)
		}
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Count > sorted[i-1].Count {
			t.Errorf("sort not non-increasing at %d: %d > %d", i, sorted[i].Count, sorted[i-1].Count)
		}
	}

	// Sorting must not reorder the underlying counter
	if c.Keys()[0] != "first" {
		t.Error("Sorted modified key order")
	}
}

// TestCountsMarshalJSON tests that counts serialize as an ordered list.
func TestCountsMarshalJSON(t *testing.T) {
	t.Parallel()

	c := NewCounts()
	c.Add("b", 1)
	c.Add("a", 2)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `[{"name":"b","count":1},{"name":"a","count":2}]`
	if string(data) != expected {
		t.Errorf("got %s, expected %s", data, expected)
	}

	empty, err := json.Marshal(NewCounts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("expected empty list, got %s", empty)
	}
}
