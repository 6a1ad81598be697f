// Package credo holds the company credo catalog and assembles the daily
// report message.
package credo

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// Entry is one credo value with its hand-written example sentences.
type Entry struct {
	Key      int
	Title    string
	Variants []string
}

// Catalog is an immutable, keyed set of entries.
type Catalog struct {
	entries map[int]Entry
	keys    []int
}

// NewCatalog builds a catalog from entries. Keys must be unique and every
// entry needs at least one variant.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[int]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.Key]; dup {
			return nil, fmt.Errorf("duplicate credo key %d", e.Key)
		}
		if len(e.Variants) == 0 {
			return nil, fmt.Errorf("credo %d (%s) has no variants", e.Key, e.Title)
		}
		c.entries[e.Key] = e
		c.keys = append(c.keys, e.Key)
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("empty credo catalog")
	}
	sort.Ints(c.keys)
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the entry for key.
func (c *Catalog) Get(key int) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Keys returns the entry keys in ascending order.
func (c *Catalog) Keys() []int {
	return append([]int(nil), c.keys...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Pick chooses an entry uniformly at random. The same seed always picks
// the same entry.
func (c *Catalog) Pick(seed uint64) Entry {
	r := rand.New(rand.NewPCG(seed, pickStream))
	return c.entries[c.keys[r.IntN(len(c.keys))]]
}

// pickStream separates the entry choice from other uses of the run seed.
const pickStream = 0x63726564 // "cred"
