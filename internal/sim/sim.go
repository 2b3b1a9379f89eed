// Package sim drives a random-walk price simulator so the desk has
// moving prices without a live exchange.
package sim

import (
	"log"
	"math/rand"

	"TradeDesk/internal/engine"
	"TradeDesk/internal/registry"
)

// Simulator perturbs every listed stock's price each tick and then
// retries pending orders against the new prices.
type Simulator struct {
	book    *registry.Book
	engine  *engine.Engine
	maxStep float64 // max fractional move per tick, e.g. 0.02 for ±2%
	rng     *rand.Rand
}

// New creates a Simulator. maxStep outside (0, 1) falls back to 2%.
func New(book *registry.Book, eng *engine.Engine, maxStep float64, seed int64) *Simulator {
	if maxStep <= 0 || maxStep >= 1 {
		maxStep = 0.02
	}
	return &Simulator{
		book:    book,
		engine:  eng,
		maxStep: maxStep,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Tick applies one random price step to every listed stock and sweeps
// pending orders for each ticker it moved.
func (s *Simulator) Tick() {
	for _, stock := range s.book.List() {
		step := (s.rng.Float64()*2 - 1) * s.maxStep
		price := stock.Price * (1 + step)
		if price <= 0.01 {
			price = 0.01
		}
		if _, err := s.book.SetPrice(stock.Ticker, price); err != nil {
			log.Printf("[WARN] sim tick %s: %v", stock.Ticker, err)
			continue
		}
		s.engine.SweepTicker(stock.Ticker)
	}
}
