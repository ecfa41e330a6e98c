package engine

import (
	"math/rand"
	"testing"
)

func TestSymbolMultipliers(t *testing.T) {
	tests := []struct {
		symbol Symbol
		want   int64
	}{
		{SymbolCherry, 10},
		{SymbolLemon, 15},
		{SymbolOrange, 20},
		{SymbolGrape, 25},
		{SymbolBell, 50},
		{SymbolStar, 100},
	}

	for _, tt := range tests {
		if got := tt.symbol.Multiplier(); got != tt.want {
			t.Errorf("%s multiplier = %d, want %d", tt.symbol, got, tt.want)
		}
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		raw    string
		want   Symbol
		wantOK bool
	}{
		{"cherry", SymbolCherry, true},
		{"star", SymbolStar, true},
		{"🍒", SymbolCherry, true},
		{"⭐", SymbolStar, true},
		{"🔔", SymbolBell, true},
		{"diamond", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSymbol(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseSymbol(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDrawSymbolsValid(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := make(map[Symbol]bool)
	for i := 0; i < 500; i++ {
		drawn := drawSymbols(rng)
		for _, s := range drawn {
			if !s.IsValid() {
				t.Fatalf("drew invalid symbol %q", s)
			}
			seen[s] = true
		}
	}
	// an unweighted draw over 1500 samples hits every symbol
	if len(seen) != len(symbolOrder) {
		t.Errorf("saw %d distinct symbols over 500 draws, want %d", len(seen), len(symbolOrder))
	}
}
