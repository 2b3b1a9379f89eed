// Package engine implements the paper-trading flow: cash accounts,
// holdings, and order placement/execution against registry prices.
// All state lives in the shared store; fills and cash movements are
// additionally appended to the journal.
package engine

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"TradeDesk/internal/journal"
	"TradeDesk/internal/model"
	"TradeDesk/internal/notify"
	"TradeDesk/internal/registry"
	"TradeDesk/internal/store"
)

const (
	accountsKey     = "accounts"
	holdingsKey     = "holdings"
	ordersKey       = "orders"
	transactionsKey = "transactions"
)

// Calendar reports trading availability. *market.Schedule satisfies
// it; tests substitute a stub.
type Calendar interface {
	IsOpen() bool
}

// Engine executes orders against the registry under market-hours
// rules.
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	book     *registry.Book
	schedule Calendar
	journal  journal.Journal
	notifier notify.Notifier // optional
}

// New creates an Engine. notifier may be nil.
func New(s *store.Store, book *registry.Book, schedule Calendar, j journal.Journal, notifier notify.Notifier) *Engine {
	return &Engine{
		store:    s,
		book:     book,
		schedule: schedule,
		journal:  j,
		notifier: notifier,
	}
}

func (e *Engine) loadAccounts() map[string]model.Account {
	accounts := map[string]model.Account{}
	e.store.Load(accountsKey, &accounts)
	return accounts
}

func (e *Engine) loadHoldings() map[string]map[string]float64 {
	holdings := map[string]map[string]float64{}
	e.store.Load(holdingsKey, &holdings)
	return holdings
}

func (e *Engine) loadOrders() map[string]model.Order {
	orders := map[string]model.Order{}
	e.store.Load(ordersKey, &orders)
	return orders
}

func (e *Engine) loadTransactions() []model.Transaction {
	var txs []model.Transaction
	e.store.Load(transactionsKey, &txs)
	return txs
}

// CreateAccount opens a cash account with a zero balance.
func (e *Engine) CreateAccount(name string) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, fmt.Errorf("account name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts := e.loadAccounts()
	acct := model.Account{
		UserID:    uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	accounts[acct.UserID] = acct
	if err := e.store.Save(accountsKey, accounts); err != nil {
		return model.Account{}, fmt.Errorf("persist accounts: %w", err)
	}
	return acct, nil
}

// Deposit adds cash to an account and returns the new balance.
func (e *Engine) Deposit(userID string, amount float64) (float64, error) {
	if !validAmount(amount) {
		return 0, fmt.Errorf("deposit must be a positive number, got %v", amount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts := e.loadAccounts()
	acct, ok := accounts[userID]
	if !ok {
		return 0, fmt.Errorf("unknown user %q", userID)
	}
	acct.Balance += amount
	accounts[userID] = acct
	if err := e.store.Save(accountsKey, accounts); err != nil {
		return 0, fmt.Errorf("persist accounts: %w", err)
	}
	e.appendTransaction(model.Transaction{
		UserID: userID, Kind: "deposit", Amount: amount,
		BalanceAfter: acct.Balance, Timestamp: time.Now(),
	})
	return acct.Balance, nil
}

// Withdraw removes cash from an account and returns the new balance.
func (e *Engine) Withdraw(userID string, amount float64) (float64, error) {
	if !validAmount(amount) {
		return 0, fmt.Errorf("withdrawal must be a positive number, got %v", amount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts := e.loadAccounts()
	acct, ok := accounts[userID]
	if !ok {
		return 0, fmt.Errorf("unknown user %q", userID)
	}
	if acct.Balance < amount {
		return 0, fmt.Errorf("insufficient cash: balance %.2f, requested %.2f", acct.Balance, amount)
	}
	acct.Balance -= amount
	accounts[userID] = acct
	if err := e.store.Save(accountsKey, accounts); err != nil {
		return 0, fmt.Errorf("persist accounts: %w", err)
	}
	e.appendTransaction(model.Transaction{
		UserID: userID, Kind: "withdraw", Amount: -amount,
		BalanceAfter: acct.Balance, Timestamp: time.Now(),
	})
	return acct.Balance, nil
}

// Balance returns the cash balance of an account.
func (e *Engine) Balance(userID string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, ok := e.loadAccounts()[userID]
	if !ok {
		return 0, fmt.Errorf("unknown user %q", userID)
	}
	return acct.Balance, nil
}

// Portfolio returns the user's ticker -> quantity holdings.
func (e *Engine) Portfolio(userID string) (map[string]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.loadAccounts()[userID]; !ok {
		return nil, fmt.Errorf("unknown user %q", userID)
	}
	out := map[string]float64{}
	for ticker, qty := range e.loadHoldings()[userID] {
		if qty > 0 {
			out[ticker] = qty
		}
	}
	return out, nil
}

// PlaceOrder validates and persists an order, then attempts immediate
// execution. The returned order reflects the post-attempt state.
func (e *Engine) PlaceOrder(userID, ticker string, quantity float64, side model.OrderSide, typ model.OrderType, limitPrice float64) (model.Order, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !validAmount(quantity) {
		return model.Order{}, fmt.Errorf("quantity must be a positive number, got %v", quantity)
	}
	if side != model.SideBuy && side != model.SideSell {
		return model.Order{}, fmt.Errorf("side must be %q or %q", model.SideBuy, model.SideSell)
	}
	if typ != model.TypeMarket && typ != model.TypeLimit {
		return model.Order{}, fmt.Errorf("type must be %q or %q", model.TypeMarket, model.TypeLimit)
	}
	if typ == model.TypeLimit && !validAmount(limitPrice) {
		return model.Order{}, fmt.Errorf("limit orders require a positive price, got %v", limitPrice)
	}

	e.mu.Lock()
	if _, ok := e.loadAccounts()[userID]; !ok {
		e.mu.Unlock()
		return model.Order{}, fmt.Errorf("unknown user %q", userID)
	}
	if _, ok := e.book.Get(ticker); !ok {
		e.mu.Unlock()
		return model.Order{}, fmt.Errorf("unknown ticker %q", ticker)
	}

	order := model.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ticker:    ticker,
		Quantity:  quantity,
		Side:      side,
		Type:      typ,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	}
	if typ == model.TypeLimit {
		order.LimitPrice = limitPrice
	}

	orders := e.loadOrders()
	orders[order.ID] = order
	if err := e.store.Save(ordersKey, orders); err != nil {
		e.mu.Unlock()
		return model.Order{}, fmt.Errorf("persist orders: %w", err)
	}
	e.mu.Unlock()

	if err := e.journal.RecordOrder(&order); err != nil {
		log.Printf("[WARN] journal order %s: %v", order.ID, err)
	}

	e.attemptExecute(order.ID)

	final, ok := e.Order(order.ID)
	if !ok {
		return order, nil
	}
	return final, nil
}

// Order returns an order by id.
func (e *Engine) Order(id string) (model.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.loadOrders()[id]
	return o, ok
}

// Orders returns orders filtered by user and/or status; empty filter
// values match everything. Results are sorted by creation time.
func (e *Engine) Orders(userID string, status model.OrderStatus) []model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Order
	for _, o := range e.loadOrders() {
		if userID != "" && o.UserID != userID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// CancelOrder cancels a pending order. It returns false when the
// order does not exist or is no longer pending.
func (e *Engine) CancelOrder(id string) bool {
	e.mu.Lock()

	orders := e.loadOrders()
	o, ok := orders[id]
	if !ok || o.Status != model.StatusPending {
		e.mu.Unlock()
		return false
	}
	o.Status = model.StatusCancelled
	orders[id] = o
	if err := e.store.Save(ordersKey, orders); err != nil {
		log.Printf("[ERROR] persist cancel %s: %v", id, err)
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	if err := e.journal.RecordOrder(&o); err != nil {
		log.Printf("[WARN] journal cancel %s: %v", id, err)
	}
	return true
}

// Transactions returns the transaction log, optionally filtered by
// user, oldest first.
func (e *Engine) Transactions(userID string) []model.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := e.loadTransactions()
	if userID == "" {
		return all
	}
	var out []model.Transaction
	for _, tx := range all {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

// SweepTicker retries all pending orders for one ticker, typically
// after a price move.
func (e *Engine) SweepTicker(ticker string) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, id := range e.pendingIDs(ticker) {
		e.attemptExecute(id)
	}
}

// SweepAll retries every pending order, typically at market open.
func (e *Engine) SweepAll() {
	for _, id := range e.pendingIDs("") {
		e.attemptExecute(id)
	}
}

func (e *Engine) pendingIDs(ticker string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []string
	for id, o := range e.loadOrders() {
		if o.Status != model.StatusPending {
			continue
		}
		if ticker != "" && o.Ticker != ticker {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// appendTransaction records a movement in the store log and the
// journal. Caller holds e.mu.
func (e *Engine) appendTransaction(tx model.Transaction) {
	txs := e.loadTransactions()
	txs = append(txs, tx)
	if err := e.store.Save(transactionsKey, txs); err != nil {
		log.Printf("[ERROR] persist transactions: %v", err)
	}
	if err := e.journal.RecordTransaction(&tx); err != nil {
		log.Printf("[WARN] journal transaction: %v", err)
	}
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
