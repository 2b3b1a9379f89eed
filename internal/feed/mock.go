package feed

import (
	"context"
	"time"

	"TradeDesk/internal/model"
)

// MockSource returns controllable fixed data for development and
// testing. When Bars is nil it generates a gentle drift around Price.
type MockSource struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) PrevBar(_ context.Context, _ string) (model.OHLCV, error) {
	if m.Err != nil {
		return model.OHLCV{}, m.Err
	}
	if len(m.Bars) > 0 {
		return m.Bars[len(m.Bars)-1], nil
	}
	return generateBars(m.Price, 1)[0], nil
}

func (m *MockSource) RangeBars(_ context.Context, _ string, from, to time.Time) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return generateBars(m.Price, days), nil
}

func generateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
