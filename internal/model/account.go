package model

import "time"

// Account holds a user's cash balance.
type Account struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction records a single cash or share movement.
// Amount is positive for deposits and sale proceeds, negative for
// withdrawals and purchases.
type Transaction struct {
	UserID       string    `json:"user_id"`
	Kind         string    `json:"kind"` // deposit, withdraw, buy, sell
	Ticker       string    `json:"ticker,omitempty"`
	Quantity     float64   `json:"quantity,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balance_after"`
	Timestamp    time.Time `json:"timestamp"`
}
