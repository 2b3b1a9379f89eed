// Package journal persists an append-only audit trail of desk
// activity for later analysis.
package journal

import (
	"TradeDesk/internal/model"
)

// Journal records order lifecycle events and cash/share movements.
type Journal interface {
	RecordOrder(o *model.Order) error
	RecordTransaction(tx *model.Transaction) error
	Close() error
}
