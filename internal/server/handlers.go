package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TradeDesk/internal/chart"
	"TradeDesk/internal/model"
	"TradeDesk/internal/quant"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Company string  `json:"company"`
		Ticker  string  `json:"ticker"`
		Volume  float64 `json:"volume"`
		Price   float64 `json:"price"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	stock, err := s.book.Create(in.Company, in.Ticker, in.Volume, in.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, stock)
}

func (s *Server) handleListStocks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.book.List())
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.book.Get(r.PathValue("ticker"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown ticker %q", r.PathValue("ticker")))
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Price float64 `json:"price"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	stock, err := s.book.SetPrice(r.PathValue("ticker"), in.Price)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	// A price move can make pending limit orders fillable.
	s.engine.SweepTicker(stock.Ticker)
	writeJSON(w, http.StatusOK, stock)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	to := time.Now()
	bars, err := s.source.RangeBars(ctx, ticker, to.AddDate(0, 0, -60), to)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	ind, err := quant.Summarize(bars)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (s *Server) handleGetHours(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schedule.Hours())
}

func (s *Server) handleSetHours(w http.ResponseWriter, r *http.Request) {
	var in model.Hours
	if !decodeBody(w, r, &in) {
		return
	}
	if err := s.schedule.SetHours(in.Open, in.Close, in.Holidays); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Opening hours may have just made pending orders executable.
	s.engine.SweepAll()
	writeJSON(w, http.StatusOK, s.schedule.Hours())
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"open":  s.schedule.IsOpen(),
		"hours": s.schedule.Hours(),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	acct, err := s.engine.CreateAccount(in.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleGetCash(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	balance, err := s.engine.Balance(user)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user, "balance": balance})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleCashMove(w, r, s.engine.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleCashMove(w, r, s.engine.Withdraw)
}

func (s *Server) handleCashMove(w http.ResponseWriter, r *http.Request, move func(string, float64) (float64, error)) {
	var in struct {
		Amount float64 `json:"amount"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	user := r.PathValue("user")
	balance, err := move(user, in.Amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user, "balance": balance})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID     string  `json:"user_id"`
		Ticker     string  `json:"ticker"`
		Quantity   float64 `json:"quantity"`
		Side       string  `json:"side"`
		Type       string  `json:"type"`
		LimitPrice float64 `json:"limit_price"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Type == "" {
		in.Type = string(model.TypeMarket)
	}
	order, err := s.engine.PlaceOrder(in.UserID, in.Ticker, in.Quantity,
		model.OrderSide(in.Side), model.OrderType(in.Type), in.LimitPrice)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := s.engine.Orders(
		r.URL.Query().Get("user"),
		model.OrderStatus(r.URL.Query().Get("status")),
	)
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.engine.CancelOrder(id) {
		writeError(w, http.StatusConflict, fmt.Errorf("order %q is not pending", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(model.StatusCancelled)})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	pf, err := s.engine.Portfolio(r.PathValue("user"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.engine.Transactions(r.URL.Query().Get("user"))
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// handleChart serves the candlestick chart. The dashboard's
// pre-rendered chart is used when it matches the requested ticker and
// no explicit window was asked for; otherwise the chart is fetched
// and rendered on demand.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))

	days := 30
	explicitDays := false
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 730 {
			writeError(w, http.StatusBadRequest, errors.New("days must be an integer between 1 and 730"))
			return
		}
		days = n
		explicitDays = true
	}

	// The cached render covers the default window only; an explicit
	// days selection always renders fresh.
	if !explicitDays {
		if render, ok := s.refresher.Latest(); ok && strings.EqualFold(render.Ticker, ticker) {
			servePNG(w, render.PNG)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	to := time.Now()
	bars, err := s.source.RangeBars(ctx, ticker, to.AddDate(0, 0, -days), to)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	png, err := chart.RenderPNG(bars, s.chartW, s.chartH)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	servePNG(w, png)
}

func servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
