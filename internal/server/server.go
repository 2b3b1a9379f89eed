// Package server exposes the desk over HTTP: stock listing and
// administration, market hours, cash accounts, orders, portfolios,
// and the candlestick chart.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"TradeDesk/internal/dashboard"
	"TradeDesk/internal/engine"
	"TradeDesk/internal/feed"
	"TradeDesk/internal/market"
	"TradeDesk/internal/registry"
)

// Server serves the desk HTTP API.
type Server struct {
	book      *registry.Book
	schedule  *market.Schedule
	engine    *engine.Engine
	refresher *dashboard.Refresher
	source    feed.Source
	chartW    int
	chartH    int
}

// New creates a Server over the desk components.
func New(book *registry.Book, schedule *market.Schedule, eng *engine.Engine,
	refresher *dashboard.Refresher, source feed.Source, chartW, chartH int) *Server {
	return &Server{
		book:      book,
		schedule:  schedule,
		engine:    eng,
		refresher: refresher,
		source:    source,
		chartW:    chartW,
		chartH:    chartH,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /stocks", s.handleCreateStock)
	mux.HandleFunc("GET /stocks", s.handleListStocks)
	mux.HandleFunc("GET /stocks/{ticker}", s.handleGetStock)
	mux.HandleFunc("POST /stocks/{ticker}/price", s.handleSetPrice)
	mux.HandleFunc("GET /stocks/{ticker}/indicators", s.handleIndicators)

	mux.HandleFunc("GET /market/hours", s.handleGetHours)
	mux.HandleFunc("PUT /market/hours", s.handleSetHours)
	mux.HandleFunc("GET /market/status", s.handleMarketStatus)

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /cash/{user}", s.handleGetCash)
	mux.HandleFunc("POST /cash/{user}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /cash/{user}/withdraw", s.handleWithdraw)

	mux.HandleFunc("POST /orders", s.handlePlaceOrder)
	mux.HandleFunc("GET /orders", s.handleListOrders)
	mux.HandleFunc("DELETE /orders/{id}", s.handleCancelOrder)

	mux.HandleFunc("GET /portfolio/{user}", s.handlePortfolio)
	mux.HandleFunc("GET /transactions", s.handleTransactions)

	mux.HandleFunc("GET /chart/{ticker}", s.handleChart)
}

// ListenAndServe runs the API on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	log.Printf("[INFO] http api listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps component errors onto HTTP statuses: lookups of
// unknown users/tickers are 404s, everything else is a caller fault.
func statusFor(err error) int {
	if strings.Contains(err.Error(), "unknown") {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}
