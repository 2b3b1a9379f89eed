// Package feed provides access to external OHLC market data. Every
// source follows one contract: bars plus an error, never a silent nil
// result on failure.
package feed

import (
	"context"
	"time"

	"TradeDesk/internal/model"
)

// Source fetches OHLC data for a ticker.
type Source interface {
	// PrevBar returns the most recent completed daily bar.
	PrevBar(ctx context.Context, ticker string) (model.OHLCV, error)
	// RangeBars returns daily bars covering [from, to], in
	// chronological order.
	RangeBars(ctx context.Context, ticker string, from, to time.Time) ([]model.OHLCV, error)
	Name() string
}
