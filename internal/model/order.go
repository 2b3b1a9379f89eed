package model

import "time"

// OrderSide indicates buy or sell.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType indicates market or limit execution.
type OrderType string

const (
	TypeMarket OrderType = "market"
	TypeLimit  OrderType = "limit"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"
	StatusRejected  OrderStatus = "rejected"
)

// Order is a buy/sell request against a listed stock.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Ticker     string      `json:"ticker"`
	Quantity   float64     `json:"quantity"`
	Side       OrderSide   `json:"side"`
	Type       OrderType   `json:"type"`
	LimitPrice float64     `json:"limit_price,omitempty"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	FilledAt   time.Time   `json:"filled_at,omitzero"`
	FillPrice  float64     `json:"fill_price,omitempty"`
	Note       string      `json:"note,omitempty"` // rejection reason, if any
}
