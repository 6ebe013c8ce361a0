package sectors

import "testing"

func TestSectorLookup(t *testing.T) {
	m := Default()
	s, ok := m.Sector("Apple")
	if !ok || s != "Technology" {
		t.Fatalf("expected Apple -> Technology, got %q ok=%v", s, ok)
	}
	if _, ok := m.Sector("Unknown Corp"); ok {
		t.Fatalf("expected miss for unknown entity")
	}
}

func TestTickersDeterministicOrder(t *testing.T) {
	a := New(map[string]string{"ZZZ": "Energy", "AAA": "Energy", "MMM": "Energy"})
	b := New(map[string]string{"MMM": "Energy", "AAA": "Energy", "ZZZ": "Energy"})
	ta, tb := a.Tickers("Energy"), b.Tickers("Energy")
	if len(ta) != 3 || len(tb) != 3 {
		t.Fatalf("unexpected lengths %d %d", len(ta), len(tb))
	}
	for i := range ta {
		if ta[i] != tb[i] {
			t.Fatalf("order differs at %d: %v vs %v", i, ta, tb)
		}
	}
	if ta[0] != "AAA" {
		t.Fatalf("expected sorted tickers, got %v", ta)
	}
}

func TestEmptyMapUsable(t *testing.T) {
	m := New(nil)
	if m.Len() != 0 {
		t.Fatalf("expected empty map")
	}
	if ts := m.Tickers("Technology"); ts != nil {
		t.Fatalf("expected nil tickers, got %v", ts)
	}
}
