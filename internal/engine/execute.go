package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"TradeDesk/internal/model"
	"TradeDesk/internal/notify"
)

// attemptExecute tries to fill one pending order. Orders only fill
// while the market is open; an unfillable limit order stays pending
// for the next sweep, while a covered-but-unaffordable (or oversold)
// order is rejected outright.
func (e *Engine) attemptExecute(orderID string) {
	e.mu.Lock()

	orders := e.loadOrders()
	order, ok := orders[orderID]
	if !ok || order.Status != model.StatusPending {
		e.mu.Unlock()
		return
	}

	if !e.schedule.IsOpen() {
		e.mu.Unlock()
		return
	}

	stock, ok := e.book.Get(order.Ticker)
	if !ok {
		e.finalize(orders, order, model.StatusRejected, 0, "ticker delisted")
		e.mu.Unlock()
		e.notifyOutcome(order.ID)
		return
	}

	marketPrice := stock.Price
	fillPrice, fillable := fillPriceFor(order, marketPrice)
	if !fillable {
		e.mu.Unlock()
		return
	}

	cost := order.Quantity * fillPrice
	accounts := e.loadAccounts()
	acct := accounts[order.UserID]
	holdings := e.loadHoldings()
	if holdings[order.UserID] == nil {
		holdings[order.UserID] = map[string]float64{}
	}

	switch order.Side {
	case model.SideBuy:
		if stock.Volume < order.Quantity {
			e.finalize(orders, order, model.StatusRejected, 0,
				fmt.Sprintf("insufficient shares: %.2f available", stock.Volume))
			e.mu.Unlock()
			e.notifyOutcome(order.ID)
			return
		}
		if acct.Balance < cost {
			e.finalize(orders, order, model.StatusRejected, 0,
				fmt.Sprintf("insufficient cash: balance %.2f, cost %.2f", acct.Balance, cost))
			e.mu.Unlock()
			e.notifyOutcome(order.ID)
			return
		}
		if err := e.book.AdjustVolume(order.Ticker, -order.Quantity); err != nil {
			e.finalize(orders, order, model.StatusRejected, 0, err.Error())
			e.mu.Unlock()
			e.notifyOutcome(order.ID)
			return
		}
		acct.Balance -= cost
		holdings[order.UserID][order.Ticker] += order.Quantity
		e.settle(orders, accounts, holdings, order, acct, fillPrice, "buy", -cost)

	case model.SideSell:
		if holdings[order.UserID][order.Ticker] < order.Quantity {
			e.finalize(orders, order, model.StatusRejected, 0,
				fmt.Sprintf("insufficient holdings: %.2f held", holdings[order.UserID][order.Ticker]))
			e.mu.Unlock()
			e.notifyOutcome(order.ID)
			return
		}
		if err := e.book.AdjustVolume(order.Ticker, order.Quantity); err != nil {
			e.finalize(orders, order, model.StatusRejected, 0, err.Error())
			e.mu.Unlock()
			e.notifyOutcome(order.ID)
			return
		}
		acct.Balance += cost
		holdings[order.UserID][order.Ticker] -= order.Quantity
		e.settle(orders, accounts, holdings, order, acct, fillPrice, "sell", cost)
	}

	e.mu.Unlock()
	e.notifyOutcome(order.ID)
}

// fillPriceFor decides whether an order is fillable at the current
// market price and at what price: market orders fill at market, limit
// buys when the limit is at or above market (at the limit), limit
// sells when the limit is at or below market.
func fillPriceFor(order model.Order, marketPrice float64) (float64, bool) {
	if order.Type == model.TypeMarket {
		return marketPrice, true
	}
	if order.Side == model.SideBuy && order.LimitPrice >= marketPrice {
		return order.LimitPrice, true
	}
	if order.Side == model.SideSell && order.LimitPrice <= marketPrice {
		return order.LimitPrice, true
	}
	return 0, false
}

// settle commits a fill: order state, account, holdings, and the
// transaction log. Caller holds e.mu.
func (e *Engine) settle(orders map[string]model.Order, accounts map[string]model.Account,
	holdings map[string]map[string]float64, order model.Order, acct model.Account,
	fillPrice float64, kind string, amount float64) {

	accounts[order.UserID] = acct
	if err := e.store.Save(accountsKey, accounts); err != nil {
		log.Printf("[ERROR] persist accounts: %v", err)
	}
	if err := e.store.Save(holdingsKey, holdings); err != nil {
		log.Printf("[ERROR] persist holdings: %v", err)
	}

	e.finalize(orders, order, model.StatusFilled, fillPrice, "")

	e.appendTransaction(model.Transaction{
		UserID:       order.UserID,
		Kind:         kind,
		Ticker:       order.Ticker,
		Quantity:     order.Quantity,
		Price:        fillPrice,
		Amount:       amount,
		BalanceAfter: acct.Balance,
		Timestamp:    time.Now(),
	})
}

// finalize writes the order's terminal state. Caller holds e.mu.
func (e *Engine) finalize(orders map[string]model.Order, order model.Order,
	status model.OrderStatus, fillPrice float64, note string) {

	order.Status = status
	order.Note = note
	if status == model.StatusFilled {
		order.FilledAt = time.Now()
		order.FillPrice = fillPrice
	}
	orders[order.ID] = order
	if err := e.store.Save(ordersKey, orders); err != nil {
		log.Printf("[ERROR] persist orders: %v", err)
	}
	if err := e.journal.RecordOrder(&order); err != nil {
		log.Printf("[WARN] journal order %s: %v", order.ID, err)
	}
}

// notifyOutcome pushes a fill or rejection to the webhook, if one is
// configured.
func (e *Engine) notifyOutcome(orderID string) {
	if e.notifier == nil {
		return
	}
	order, ok := e.Order(orderID)
	if !ok {
		return
	}
	var msg string
	switch order.Status {
	case model.StatusFilled:
		msg = notify.FormatFill(&order)
	case model.StatusRejected:
		msg = notify.FormatRejection(&order)
	default:
		return
	}
	// Delivery retries must not hold up order placement.
	go func() {
		if err := e.notifier.SendWithRetry(context.Background(), msg, 3); err != nil {
			log.Printf("[ERROR] notify order %s: %v", order.ID, err)
		}
	}()
}
