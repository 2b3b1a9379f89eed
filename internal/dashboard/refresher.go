// Package dashboard keeps a pre-rendered candlestick chart warm for
// the HTTP layer, decoupling serving from slow feed fetches.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeDesk/internal/chart"
	"TradeDesk/internal/feed"
)

// Render is one completed chart render.
type Render struct {
	Ticker     string
	PNG        []byte
	Bars       int
	RenderedAt time.Time
}

// Refresher fetches bars and renders the chart asynchronously. Every
// Refresh bumps a generation counter; a fetch that completes after a
// newer Refresh has started is discarded, so a stale slow response
// can never overwrite a fresher chart.
type Refresher struct {
	source feed.Source
	width  int
	height int

	mu     sync.Mutex
	gen    uint64
	latest *Render
}

// NewRefresher creates a Refresher rendering at the given dimensions.
func NewRefresher(source feed.Source, width, height int) *Refresher {
	return &Refresher{source: source, width: width, height: height}
}

// Refresh fetches bars for [from, to] and renders them. It blocks for
// the duration of the fetch; callers wanting fire-and-forget run it in
// a goroutine. The result is installed only if no newer Refresh began
// in the meantime.
func (r *Refresher) Refresh(ctx context.Context, ticker string, from, to time.Time) error {
	r.mu.Lock()
	r.gen++
	myGen := r.gen
	r.mu.Unlock()

	bars, err := r.source.RangeBars(ctx, ticker, from, to)
	if err != nil {
		return fmt.Errorf("fetch %s bars: %w", ticker, err)
	}
	png, err := chart.RenderPNG(bars, r.width, r.height)
	if err != nil {
		return fmt.Errorf("render %s chart: %w", ticker, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if myGen != r.gen {
		log.Printf("[INFO] discarding stale chart render for %s (gen %d, current %d)", ticker, myGen, r.gen)
		return nil
	}
	r.latest = &Render{
		Ticker:     ticker,
		PNG:        png,
		Bars:       len(bars),
		RenderedAt: time.Now(),
	}
	return nil
}

// Latest returns the most recent render, or false when nothing has
// been rendered yet.
func (r *Refresher) Latest() (Render, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return Render{}, false
	}
	return *r.latest, true
}
