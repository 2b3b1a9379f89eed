package journal

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TradeDesk/internal/model"
)

// SQLiteJournal persists the audit trail to a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteJournal opens (or creates) the journal database and runs
// migrations.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the desk writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite journal opened: %s", dbPath)
	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS order_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			order_id    TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			ticker      TEXT NOT NULL,
			quantity    REAL,
			side        TEXT,
			type        TEXT,
			limit_price REAL,
			status      TEXT,
			fill_price  REAL,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_ts ON order_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_order_id ON order_events(order_id)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			user_id       TEXT NOT NULL,
			kind          TEXT NOT NULL,
			ticker        TEXT,
			quantity      REAL,
			price         REAL,
			amount        REAL,
			balance_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_ts ON transactions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user ON transactions(user_id)`,
	}

	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (j *SQLiteJournal) RecordOrder(o *model.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO order_events
		(timestamp, order_id, user_id, ticker, quantity, side, type, limit_price, status, fill_price, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), o.ID, o.UserID, o.Ticker, o.Quantity,
		string(o.Side), string(o.Type), o.LimitPrice,
		string(o.Status), o.FillPrice, o.Note,
	)
	return err
}

func (j *SQLiteJournal) RecordTransaction(tx *model.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO transactions
		(timestamp, user_id, kind, ticker, quantity, price, amount, balance_after)
		VALUES (?,?,?,?,?,?,?,?)`,
		tx.Timestamp.Unix(), tx.UserID, tx.Kind, tx.Ticker,
		tx.Quantity, tx.Price, tx.Amount, tx.BalanceAfter,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	log.Println("[INFO] closing sqlite journal")
	return j.db.Close()
}
