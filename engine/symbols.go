package engine

import (
	"math/rand"
)

// Symbol identifies one of the six reel symbols. The catalog is closed:
// every symbol carries a fixed payout multiplier for three-of-a-kind wins.
type Symbol string

const (
	SymbolCherry Symbol = "cherry"
	SymbolLemon  Symbol = "lemon"
	SymbolOrange Symbol = "orange"
	SymbolGrape  Symbol = "grape"
	SymbolBell   Symbol = "bell"
	SymbolStar   Symbol = "star"
)

// ReelCount is the number of reels on the machine
const ReelCount = 3

var symbolOrder = []Symbol{
	SymbolCherry,
	SymbolLemon,
	SymbolOrange,
	SymbolGrape,
	SymbolBell,
	SymbolStar,
}

var symbolMultipliers = map[Symbol]int64{
	SymbolCherry: 10,
	SymbolLemon:  15,
	SymbolOrange: 20,
	SymbolGrape:  25,
	SymbolBell:   50,
	SymbolStar:   100,
}

var symbolEmojis = map[Symbol]string{
	SymbolCherry: "🍒",
	SymbolLemon:  "🍋",
	SymbolOrange: "🍊",
	SymbolGrape:  "🍇",
	SymbolBell:   "🔔",
	SymbolStar:   "⭐",
}

// AllSymbols returns the symbol catalog in reel order
func AllSymbols() []Symbol {
	out := make([]Symbol, len(symbolOrder))
	copy(out, symbolOrder)
	return out
}

// IsValid reports whether s is part of the catalog
func (s Symbol) IsValid() bool {
	_, ok := symbolMultipliers[s]
	return ok
}

// Multiplier returns the three-of-a-kind payout multiplier for the symbol
func (s Symbol) Multiplier() int64 {
	return symbolMultipliers[s]
}

// Emoji returns the display glyph for the symbol
func (s Symbol) Emoji() string {
	return symbolEmojis[s]
}

// ParseSymbol resolves a symbol from its canonical name or its display glyph.
// Legacy save documents store the glyph form.
func ParseSymbol(raw string) (Symbol, bool) {
	s := Symbol(raw)
	if s.IsValid() {
		return s, true
	}
	for sym, emoji := range symbolEmojis {
		if emoji == raw {
			return sym, true
		}
	}
	return "", false
}

// drawSymbols draws one symbol per reel, independently and uniformly.
// The draw is deliberately unweighted by payout tier.
func drawSymbols(rng *rand.Rand) [ReelCount]Symbol {
	var out [ReelCount]Symbol
	for i := range out {
		out[i] = symbolOrder[rng.Intn(len(symbolOrder))]
	}
	return out
}
