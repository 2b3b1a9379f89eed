// Package quant computes the summary indicators shown on the stock
// detail view: moving averages, RSI, and recent high/low ranges.
package quant

import (
	"errors"
	"math"

	"TradeDesk/internal/model"
)

// SMA computes the simple moving average of the last period closes.
func SMA(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}

// RSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 bars; returns 50.0 when data is
// insufficient.
func RSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 50.0, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// HighLow scans the most recent window bars and returns the high and
// low. A window larger than the data scans everything.
func HighLow(bars []model.OHLCV, window int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := len(bars) - window
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// Indicators is the computed summary for one ticker.
type Indicators struct {
	LastClose float64 `json:"last_close"`
	SMA20     float64 `json:"sma20"`
	RSI14     float64 `json:"rsi14"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
}

// Summarize computes the detail-view indicators from daily bars.
// Indicators that need more history than supplied degrade to neutral
// defaults rather than failing the whole summary.
func Summarize(bars []model.OHLCV) (Indicators, error) {
	if len(bars) == 0 {
		return Indicators{}, errors.New("no bars provided")
	}
	ind := Indicators{LastClose: bars[len(bars)-1].Close}

	if sma, err := SMA(bars, 20); err == nil {
		ind.SMA20 = sma
	} else {
		ind.SMA20 = ind.LastClose
	}
	if rsi, err := RSI(bars, 14); err == nil {
		ind.RSI14 = rsi
	} else {
		ind.RSI14 = 50
	}
	high, low, err := HighLow(bars, len(bars))
	if err != nil {
		return Indicators{}, err
	}
	ind.High = high
	ind.Low = low
	return ind, nil
}
