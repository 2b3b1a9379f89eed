package registry

import (
	"math"
	"path/filepath"
	"testing"

	"TradeDesk/internal/store"
)

func newBook(t *testing.T) *Book {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewBook(s)
}

func TestCreate_UppercasesTickerAndSeedsRange(t *testing.T) {
	b := newBook(t)

	stock, err := b.Create("Acme Corp", "acme", 1000, 25.50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stock.Ticker != "ACME" {
		t.Errorf("ticker not uppercased: %q", stock.Ticker)
	}
	if stock.Open != 25.50 || stock.High != 25.50 || stock.Low != 25.50 {
		t.Errorf("open/high/low not seeded from price: %+v", stock)
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	b := newBook(t)
	if _, err := b.Create("Acme Corp", "ACME", 1000, 25.50); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, q := range []string{"acme", "ACME", "AcMe", " acme "} {
		got, ok := b.Get(q)
		if !ok {
			t.Errorf("Get(%q): not found", q)
			continue
		}
		if got.Ticker != "ACME" {
			t.Errorf("Get(%q): ticker = %q", q, got.Ticker)
		}
	}
}

func TestGet_MissReturnsFalse(t *testing.T) {
	b := newBook(t)
	if _, ok := b.Get("NOPE"); ok {
		t.Error("expected miss for unlisted ticker")
	}
}

func TestList_ReturnsLastWrittenValues(t *testing.T) {
	b := newBook(t)
	if _, err := b.Create("Beta Inc", "BETA", 10, 5); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := b.Create("Acme Corp", "ACME", 20, 7); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Overwrite BETA with new values.
	if _, err := b.Create("Beta Incorporated", "BETA", 30, 9); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	got := b.List()
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 stocks, got %d", len(got))
	}
	if got[0].Ticker != "ACME" || got[1].Ticker != "BETA" {
		t.Errorf("unexpected order: %v, %v", got[0].Ticker, got[1].Ticker)
	}
	if got[1].Company != "Beta Incorporated" || got[1].Price != 9 {
		t.Errorf("BETA did not match last-written values: %+v", got[1])
	}
}

func TestCreate_RejectsBadNumbers(t *testing.T) {
	b := newBook(t)

	tests := []struct {
		name   string
		volume float64
		price  float64
	}{
		{"nan price", 100, math.NaN()},
		{"zero price", 100, 0},
		{"negative price", 100, -1},
		{"inf price", 100, math.Inf(1)},
		{"nan volume", math.NaN(), 10},
		{"negative volume", -5, 10},
	}
	for _, tt := range tests {
		if _, err := b.Create("Acme", "ACME", tt.volume, tt.price); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSetPrice_KeepsListingRange(t *testing.T) {
	b := newBook(t)
	if _, err := b.Create("Acme", "ACME", 100, 10); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := b.SetPrice("acme", 50)
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	if got.Price != 50 {
		t.Errorf("price = %v, want 50", got.Price)
	}
	if got.Open != 10 || got.High != 10 || got.Low != 10 {
		t.Errorf("listing range rewritten: %+v", got)
	}
}

func TestAdjustVolume_RejectsOverdraw(t *testing.T) {
	b := newBook(t)
	if _, err := b.Create("Acme", "ACME", 10, 10); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := b.AdjustVolume("ACME", -11); err == nil {
		t.Error("expected overdraw error")
	}
	if err := b.AdjustVolume("ACME", -10); err != nil {
		t.Errorf("full drain should succeed: %v", err)
	}
}
