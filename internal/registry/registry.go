// Package registry maintains the ticker -> stock mapping. The whole
// map lives under one store key and every mutation rewrites it; record
// granularity is not needed at desk scale.
package registry

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"TradeDesk/internal/model"
	"TradeDesk/internal/store"
)

const storeKey = "stocks"

// Book is the registry of listed stocks.
type Book struct {
	mu    sync.Mutex
	store *store.Store
}

// NewBook creates a Book over the given store.
func NewBook(s *store.Store) *Book {
	return &Book{store: s}
}

func (b *Book) load() map[string]model.Stock {
	stocks := map[string]model.Stock{}
	b.store.Load(storeKey, &stocks)
	return stocks
}

// Create lists a new stock. The ticker is uppercased and becomes the
// unique key; the listing price seeds open, high, and low. Numeric
// inputs are validated at the boundary: a non-finite or non-positive
// price and a non-finite or negative volume are rejected with a
// descriptive error instead of being admitted as NaN.
func (b *Book) Create(company, ticker string, volume, price float64) (model.Stock, error) {
	company = strings.TrimSpace(company)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if company == "" {
		return model.Stock{}, fmt.Errorf("company name is required")
	}
	if ticker == "" {
		return model.Stock{}, fmt.Errorf("ticker is required")
	}
	if math.IsNaN(volume) || math.IsInf(volume, 0) || volume < 0 {
		return model.Stock{}, fmt.Errorf("volume must be a non-negative number, got %v", volume)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return model.Stock{}, fmt.Errorf("price must be a positive number, got %v", price)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	stocks := b.load()
	stock := model.Stock{
		Company:   company,
		Ticker:    ticker,
		Volume:    volume,
		Price:     price,
		Open:      price,
		High:      price,
		Low:       price,
		CreatedAt: time.Now(),
	}
	stocks[ticker] = stock
	if err := b.store.Save(storeKey, stocks); err != nil {
		return model.Stock{}, fmt.Errorf("persist stocks: %w", err)
	}
	return stock, nil
}

// List returns a snapshot of all listed stocks, sorted by ticker.
func (b *Book) List() []model.Stock {
	b.mu.Lock()
	defer b.mu.Unlock()

	stocks := b.load()
	out := make([]model.Stock, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Get looks up a stock by ticker, case-insensitively. The second
// return value reports whether the ticker is listed.
func (b *Book) Get(ticker string) (model.Stock, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.load()[strings.ToUpper(strings.TrimSpace(ticker))]
	return s, ok
}

// SetPrice updates the current market price of a listed stock. The
// listing-time open/high/low stay as they were.
func (b *Book) SetPrice(ticker string, price float64) (model.Stock, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return model.Stock{}, fmt.Errorf("price must be a positive number, got %v", price)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	b.mu.Lock()
	defer b.mu.Unlock()

	stocks := b.load()
	s, ok := stocks[ticker]
	if !ok {
		return model.Stock{}, fmt.Errorf("unknown ticker %q", ticker)
	}
	s.Price = price
	stocks[ticker] = s
	if err := b.store.Save(storeKey, stocks); err != nil {
		return model.Stock{}, fmt.Errorf("persist stocks: %w", err)
	}
	return s, nil
}

// AdjustVolume changes the available share count by delta (negative
// for a buy fill, positive for a sell fill). It fails when the result
// would go negative.
func (b *Book) AdjustVolume(ticker string, delta float64) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	b.mu.Lock()
	defer b.mu.Unlock()

	stocks := b.load()
	s, ok := stocks[ticker]
	if !ok {
		return fmt.Errorf("unknown ticker %q", ticker)
	}
	if s.Volume+delta < 0 {
		return fmt.Errorf("insufficient shares of %s: have %.2f, need %.2f", ticker, s.Volume, -delta)
	}
	s.Volume += delta
	stocks[ticker] = s
	if err := b.store.Save(storeKey, stocks); err != nil {
		return fmt.Errorf("persist stocks: %w", err)
	}
	return nil
}
