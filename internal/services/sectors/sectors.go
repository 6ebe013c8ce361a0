package sectors

import "sort"

// Map is an immutable entity-text to sector-name lookup. It is built
// once at startup and injected into the analysis components; nothing
// mutates it afterwards, so concurrent reads need no locking.
type Map struct {
	bySector map[string][]string
	entries  map[string]string
}

// New builds a Map from entity→sector pairs. A nil or empty input
// yields an empty, usable map.
func New(entries map[string]string) *Map {
	m := &Map{
		entries:  make(map[string]string, len(entries)),
		bySector: make(map[string][]string),
	}
	for entity, sector := range entries {
		m.entries[entity] = sector
		m.bySector[sector] = append(m.bySector[sector], entity)
	}
	// Deterministic reverse lookup regardless of map iteration order.
	for _, ts := range m.bySector {
		sort.Strings(ts)
	}
	return m
}

// Default returns the built-in company/ticker to sector mapping.
func Default() *Map {
	return New(map[string]string{
		"AAPL": "Technology", "Apple": "Technology",
		"MSFT": "Technology", "Microsoft": "Technology",
		"GOOGL": "Technology", "Google": "Technology",
		"NVDA": "Technology", "Nvidia": "Technology",
		"AMZN": "Consumer Discretionary", "Amazon": "Consumer Discretionary",
		"TSLA": "Consumer Discretionary", "Tesla": "Consumer Discretionary",
		"JPM": "Financials", "JPMorgan": "Financials",
		"GS": "Financials", "Goldman Sachs": "Financials",
		"XOM": "Energy", "Exxon": "Energy",
		"CVX": "Energy", "Chevron": "Energy",
		"PFE": "Healthcare", "Pfizer": "Healthcare",
		"JNJ": "Healthcare", "Johnson & Johnson": "Healthcare",
	})
}

// Sector resolves an entity text to its sector name.
func (m *Map) Sector(entity string) (string, bool) {
	s, ok := m.entries[entity]
	return s, ok
}

// Tickers returns the entity strings assigned to a sector. The slice
// must not be modified by callers. Unknown sectors yield nil.
func (m *Map) Tickers(sector string) []string {
	return m.bySector[sector]
}

// Len returns the number of entity entries.
func (m *Map) Len() int { return len(m.entries) }
