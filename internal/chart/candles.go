// Package chart renders OHLCV bars as a candlestick raster: one wick
// and one body per bar, colored by direction, on a shared linear
// price scale.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"TradeDesk/internal/model"
)

var (
	// Background, bullish (close >= open) and bearish (close < open)
	// fill colors.
	Background = color.RGBA{R: 0x12, G: 0x16, B: 0x1d, A: 0xff}
	Bullish    = color.RGBA{R: 0x26, G: 0xa6, B: 0x9a, A: 0xff}
	Bearish    = color.RGBA{R: 0xef, G: 0x53, B: 0x50, A: 0xff}
	Wick       = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
)

// Draw paints bars onto img. Prior contents are cleared. The surface
// width is split into len(bars) equal slots; each bar gets a 1px wick
// at the slot center spanning high to low, and a body spanning open
// to close over the middle 80% of the slot. All bars share one linear
// scale from the global min to the global max of open/high/low/close,
// with min at the bottom row and max at the top. When every price is
// equal the bodies are drawn flat at vertical mid-surface.
func Draw(img *image.RGBA, bars []model.OHLCV) {
	bounds := img.Bounds()
	draw.Draw(img, bounds, image.NewUniform(Background), image.Point{}, draw.Src)
	if len(bars) == 0 {
		return
	}

	min, max := priceRange(bars)
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	slot := w / float64(len(bars))

	// Maps a price to a y pixel, inverted so min sits at the bottom.
	toY := func(p float64) int {
		if max == min {
			return bounds.Min.Y + int(h/2)
		}
		return bounds.Min.Y + int(h-(p-min)/(max-min)*h)
	}

	for i, bar := range bars {
		left := float64(bounds.Min.X) + float64(i)*slot
		center := int(left + slot/2)
		bodyLeft := int(left + slot*0.1)
		bodyRight := int(left + slot*0.9)

		// Wick: high -> low at the slot center.
		vline(img, center, toY(bar.High), toY(bar.Low), Wick)

		// Body: open -> close, colored by direction.
		fill := Bullish
		if bar.Close < bar.Open {
			fill = Bearish
		}
		top, bottom := toY(bar.Open), toY(bar.Close)
		if top > bottom {
			top, bottom = bottom, top
		}
		rect(img, bodyLeft, top, bodyRight, bottom, fill)
	}
}

// RenderPNG draws bars onto a fresh w x h surface and encodes it.
func RenderPNG(bars []model.OHLCV, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Draw(img, bars)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// priceRange scans all of open/high/low/close over all bars.
func priceRange(bars []model.OHLCV) (min, max float64) {
	min, max = bars[0].Low, bars[0].High
	for _, b := range bars {
		for _, p := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
		}
	}
	return min, max
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := y0; y <= y1; y++ {
		if y >= b.Min.Y && y < b.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}
}

func rect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	b := img.Bounds()
	for x := x0; x < x1; x++ {
		if x < b.Min.X || x >= b.Max.X {
			continue
		}
		for y := y0; y <= y1; y++ {
			if y >= b.Min.Y && y < b.Max.Y {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
