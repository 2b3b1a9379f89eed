package notify

import (
	"fmt"

	"TradeDesk/internal/model"
)

// FormatFill renders an order fill for the webhook channel.
func FormatFill(o *model.Order) string {
	return fmt.Sprintf("✅ %s order filled: %s %.2f %s @ %.2f (order %s)",
		o.Type, o.Side, o.Quantity, o.Ticker, o.FillPrice, o.ID)
}

// FormatRejection renders an order rejection for the webhook channel.
func FormatRejection(o *model.Order) string {
	return fmt.Sprintf("❌ %s order rejected: %s %.2f %s — %s (order %s)",
		o.Type, o.Side, o.Quantity, o.Ticker, o.Note, o.ID)
}
