package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"TradeDesk/internal/model"
)

func TestSQLiteJournal_RecordsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLiteJournal(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	order := &model.Order{
		ID: "o-1", UserID: "u-1", Ticker: "ACME", Quantity: 10,
		Side: model.SideBuy, Type: model.TypeMarket,
		Status: model.StatusFilled, FillPrice: 12.5,
	}
	if err := j.RecordOrder(order); err != nil {
		t.Fatalf("record order: %v", err)
	}

	tx := &model.Transaction{
		UserID: "u-1", Kind: "buy", Ticker: "ACME", Quantity: 10,
		Price: 12.5, Amount: -125, BalanceAfter: 875, Timestamp: time.Now(),
	}
	if err := j.RecordTransaction(tx); err != nil {
		t.Fatalf("record transaction: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Re-open the file directly and verify both rows landed.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_events WHERE order_id = 'o-1' AND status = 'filled'`).Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if n != 1 {
		t.Errorf("order rows = %d, want 1", n)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = 'u-1' AND kind = 'buy'`).Scan(&n); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if n != 1 {
		t.Errorf("transaction rows = %d, want 1", n)
	}
}

func TestNoopJournal(t *testing.T) {
	j := NewNoopJournal()
	if err := j.RecordOrder(&model.Order{}); err != nil {
		t.Errorf("noop record order: %v", err)
	}
	if err := j.RecordTransaction(&model.Transaction{}); err != nil {
		t.Errorf("noop record transaction: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("noop close: %v", err)
	}
}
