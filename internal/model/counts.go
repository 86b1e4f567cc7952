package model

import (
	"encoding/json"
	"sort"
)

// Counts is a counter that remembers the order in which keys were first seen.
//
// Go maps have no stable iteration order, but the summary table must break
// ties by first appearance. Counts keeps a key slice alongside the map so
// every traversal is deterministic.
//
// The zero value is ready to use. Counts is not safe for concurrent use.
type Counts struct {
	order  []string
	counts map[string]int
}

// CountEntry is a single (name, count) pair of a Counts.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewCounts returns an empty Counts.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Inc adds one to key.
func (c *Counts) Inc(key string) {
	c.Add(key, 1)
}

// Add adds n to key, registering the key on first use.
func (c *Counts) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// Get returns the count for key, or zero if the key was never added.
func (c *Counts) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Keys returns the keys in first-seen order.
func (c *Counts) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Entries returns all entries in first-seen order.
func (c *Counts) Entries() []CountEntry {
	if c == nil {
		return nil
	}
	entries := make([]CountEntry, len(c.order))
	for i, k := range c.order {
		entries[i] = CountEntry{Name: k, Count: c.counts[k]}
	}
	return entries
}

// Merge adds every count of other into c. Keys new to c are appended in
// other's first-seen order.
func (c *Counts) Merge(other *Counts) {
	if other == nil {
		return
	}
	for _, k := range other.order {
		c.Add(k, other.counts[k])
	}
}

// Sorted returns the entries ordered by count, highest first.
// The sort is stable, so equal counts keep their first-seen order.
func (c *Counts) Sorted() []CountEntry {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// MarshalJSON encodes the counts as an ordered list of entries.
func (c *Counts) MarshalJSON() ([]byte, error) {
	entries := c.Entries()
	if entries == nil {
		entries = []CountEntry{}
	}
	return json.Marshal(entries)
}
