package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Stock is a tradable instrument listed on the desk.
// Open/High/Low capture the listing price and are not rewritten
// by later price moves.
type Stock struct {
	Company   string    `json:"company"`
	Ticker    string    `json:"ticker"`
	Volume    float64   `json:"volume"` // shares available for sale
	Price     float64   `json:"price"`  // current market price
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	CreatedAt time.Time `json:"created_at"`
}

// Hours is the configured trading window plus holiday closures.
type Hours struct {
	Open     string   `json:"open"`     // "HH:MM"
	Close    string   `json:"close"`    // "HH:MM"
	Holidays []string `json:"holidays"` // "YYYY-MM-DD", local dates
}

// DefaultHours is the schedule seeded on first start.
func DefaultHours() Hours {
	return Hours{Open: "09:30", Close: "16:00", Holidays: []string{}}
}
