package credo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Len() != 13 {
		t.Fatalf("Len() = %d, want 13", c.Len())
	}
	wantKeys := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	if diff := cmp.Diff(wantKeys, c.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	for _, k := range c.Keys() {
		e, _ := c.Get(k)
		if len(e.Variants) != 5 {
			t.Errorf("credo %d has %d variants, want 5", k, len(e.Variants))
		}
		if e.Title == "" {
			t.Errorf("credo %d has no title", k)
		}
	}
}

func TestGet(t *testing.T) {
	c := Default()
	e, ok := c.Get(13)
	if !ok || e.Title != "微差が大差" {
		t.Errorf("Get(13) = %+v, %v", e, ok)
	}
	if _, ok := c.Get(14); ok {
		t.Error("Get(14) should not exist")
	}
}

func TestKeys_ReturnsCopy(t *testing.T) {
	c := Default()
	keys := c.Keys()
	keys[0] = 99
	if c.Keys()[0] != 1 {
		t.Error("mutating Keys() result changed the catalog")
	}
}

func TestPick_Deterministic(t *testing.T) {
	c := Default()
	for seed := uint64(0); seed < 50; seed++ {
		a, b := c.Pick(seed), c.Pick(seed)
		if a.Key != b.Key {
			t.Fatalf("Pick(%d) not deterministic: %d vs %d", seed, a.Key, b.Key)
		}
	}
}

func TestPick_CoversCatalog(t *testing.T) {
	c := Default()
	seen := make(map[int]bool)
	for seed := uint64(0); seed < 2000; seed++ {
		seen[c.Pick(seed).Key] = true
	}
	if len(seen) != c.Len() {
		t.Errorf("2000 picks reached %d of %d entries", len(seen), c.Len())
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"duplicate key", []Entry{{1, "a", []string{"x"}}, {1, "b", []string{"y"}}}},
		{"no variants", []Entry{{1, "a", nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.entries); err == nil {
				t.Error("NewCatalog() = nil error, want error")
			}
		})
	}
}
