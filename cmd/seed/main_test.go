package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkitchen/catering-backend/internal/catalog"
)

func TestBundledMenuParses(t *testing.T) {
	rows, err := catalog.ParseSeed(bytes.NewReader(defaultMenu))
	if err != nil {
		t.Fatalf("bundled menu invalid: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 menu items, got %d", len(rows))
	}
	prices := map[string]string{
		"Peking Duck Feast":     "299",
		"Butter Chicken Deluxe": "199",
		"Vegetable Biryani":     "169",
	}
	for _, row := range rows {
		want, ok := prices[row.Name]
		if !ok {
			continue
		}
		if !row.Price.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%s: expected price %s got %s", row.Name, want, row.Price)
		}
	}
}
