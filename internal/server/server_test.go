package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"TradeDesk/internal/dashboard"
	"TradeDesk/internal/engine"
	"TradeDesk/internal/feed"
	"TradeDesk/internal/journal"
	"TradeDesk/internal/market"
	"TradeDesk/internal/model"
	"TradeDesk/internal/registry"
	"TradeDesk/internal/store"
)

type openCalendar struct{}

func (openCalendar) IsOpen() bool { return true }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	book := registry.NewBook(s)
	sched := market.NewSchedule(s)
	if err := sched.Seed(); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	src := &feed.MockSource{Price: 100}
	// The engine gets an always-open calendar so fills don't depend
	// on the wall clock; schedule endpoints still use the real one.
	eng := engine.New(s, book, openCalendar{}, journal.NewNoopJournal(), nil)
	refresher := dashboard.NewRefresher(src, 200, 100)
	srv := New(book, sched, eng, refresher, src, 200, 100)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]bool
	if code := doJSON(t, "GET", ts.URL+"/health", nil, &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !out["ok"] {
		t.Error("expected ok=true")
	}
}

func TestStockLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var created model.Stock
	code := doJSON(t, "POST", ts.URL+"/stocks", map[string]any{
		"company": "Acme Corp", "ticker": "acme", "volume": 1000, "price": 25.5,
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if created.Ticker != "ACME" {
		t.Errorf("ticker = %q, want ACME", created.Ticker)
	}

	var listed []model.Stock
	if code := doJSON(t, "GET", ts.URL+"/stocks", nil, &listed); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d stocks, want 1", len(listed))
	}

	var got model.Stock
	if code := doJSON(t, "GET", ts.URL+"/stocks/acme", nil, &got); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if got.Ticker != "ACME" {
		t.Errorf("get ticker = %q", got.Ticker)
	}

	if code := doJSON(t, "GET", ts.URL+"/stocks/NOPE", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing stock status = %d, want 404", code)
	}

	if code := doJSON(t, "POST", ts.URL+"/stocks", map[string]any{
		"company": "Bad", "ticker": "BAD", "volume": 10, "price": -5,
	}, nil); code != http.StatusBadRequest {
		t.Errorf("invalid price status = %d, want 400", code)
	}
}

func TestMarketHoursEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var hours model.Hours
	code := doJSON(t, "PUT", ts.URL+"/market/hours", map[string]any{
		"open": "09:00", "close": "17:00", "holidays": []string{"2024-01-01"},
	}, &hours)
	if code != http.StatusOK {
		t.Fatalf("set hours status = %d", code)
	}
	if hours.Open != "09:00" || hours.Close != "17:00" || len(hours.Holidays) != 1 {
		t.Errorf("unexpected hours: %+v", hours)
	}

	if code := doJSON(t, "PUT", ts.URL+"/market/hours", map[string]any{
		"open": "17:00", "close": "09:00",
	}, nil); code != http.StatusBadRequest {
		t.Errorf("inverted hours status = %d, want 400", code)
	}

	var status struct {
		Open  bool        `json:"open"`
		Hours model.Hours `json:"hours"`
	}
	if code := doJSON(t, "GET", ts.URL+"/market/status", nil, &status); code != http.StatusOK {
		t.Fatalf("status status = %d", code)
	}
	if status.Hours.Open != "09:00" {
		t.Errorf("status hours = %+v", status.Hours)
	}
}

func TestTradingFlow(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/stocks", map[string]any{
		"company": "Acme Corp", "ticker": "ACME", "volume": 1000, "price": 10,
	}, nil)

	var acct model.Account
	if code := doJSON(t, "POST", ts.URL+"/accounts", map[string]string{"name": "alice"}, &acct); code != http.StatusCreated {
		t.Fatalf("create account status = %d", code)
	}

	var bal struct {
		Balance float64 `json:"balance"`
	}
	code := doJSON(t, "POST", ts.URL+"/cash/"+acct.UserID+"/deposit", map[string]float64{"amount": 500}, &bal)
	if code != http.StatusOK || bal.Balance != 500 {
		t.Fatalf("deposit: status %d balance %v", code, bal.Balance)
	}

	var order model.Order
	code = doJSON(t, "POST", ts.URL+"/orders", map[string]any{
		"user_id": acct.UserID, "ticker": "ACME", "quantity": 10, "side": "buy",
	}, &order)
	if code != http.StatusCreated {
		t.Fatalf("place order status = %d", code)
	}
	if order.Status != model.StatusFilled {
		t.Fatalf("order status = %s (note %q), want filled", order.Status, order.Note)
	}

	var pf map[string]float64
	if code := doJSON(t, "GET", ts.URL+"/portfolio/"+acct.UserID, nil, &pf); code != http.StatusOK {
		t.Fatalf("portfolio status = %d", code)
	}
	if pf["ACME"] != 10 {
		t.Errorf("portfolio = %v, want 10 ACME", pf)
	}

	var txs []model.Transaction
	if code := doJSON(t, "GET", ts.URL+"/transactions?user="+acct.UserID, nil, &txs); code != http.StatusOK {
		t.Fatalf("transactions status = %d", code)
	}
	if len(txs) != 2 { // deposit + buy
		t.Errorf("transactions = %d, want 2", len(txs))
	}

	if code := doJSON(t, "GET", ts.URL+"/cash/ghost", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", code)
	}
}

func TestCancelOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, "POST", ts.URL+"/stocks", map[string]any{
		"company": "Acme Corp", "ticker": "ACME", "volume": 1000, "price": 10,
	}, nil)
	var acct model.Account
	doJSON(t, "POST", ts.URL+"/accounts", map[string]string{"name": "bob"}, &acct)
	doJSON(t, "POST", ts.URL+"/cash/"+acct.UserID+"/deposit", map[string]float64{"amount": 500}, nil)

	// A limit buy far below market stays pending.
	var order model.Order
	doJSON(t, "POST", ts.URL+"/orders", map[string]any{
		"user_id": acct.UserID, "ticker": "ACME", "quantity": 1,
		"side": "buy", "type": "limit", "limit_price": 1,
	}, &order)
	if order.Status != model.StatusPending {
		t.Fatalf("order status = %s, want pending", order.Status)
	}

	if code := doJSON(t, "DELETE", ts.URL+"/orders/"+order.ID, nil, nil); code != http.StatusOK {
		t.Errorf("cancel status = %d, want 200", code)
	}
	// Cancelling again conflicts.
	if code := doJSON(t, "DELETE", ts.URL+"/orders/"+order.ID, nil, nil); code != http.StatusConflict {
		t.Errorf("double cancel status = %d, want 409", code)
	}
}

func TestChartEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/chart/ACME?days=14")
	if err != nil {
		t.Fatalf("get chart: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chart status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode chart png: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("chart size = %v, want 200x100", img.Bounds())
	}
}

func TestChartEndpoint_ExplicitDaysBypassesCachedRender(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	book := registry.NewBook(s)
	sched := market.NewSchedule(s)
	if err := sched.Seed(); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	src := &feed.MockSource{Price: 100}
	eng := engine.New(s, book, openCalendar{}, journal.NewNoopJournal(), nil)

	// The cached render uses deliberately different dimensions so the
	// two code paths are distinguishable by image size.
	refresher := dashboard.NewRefresher(src, 120, 60)
	now := time.Now()
	if err := refresher.Refresh(context.Background(), "SPY", now.AddDate(0, 0, -30), now); err != nil {
		t.Fatalf("warm refresher: %v", err)
	}

	srv := New(book, sched, eng, refresher, src, 200, 100)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	fetch := func(url string) image.Image {
		t.Helper()
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("get %s: %v", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", url, resp.StatusCode)
		}
		img, err := png.Decode(resp.Body)
		if err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
		return img
	}

	// Default window serves the cached render.
	if img := fetch(ts.URL + "/chart/SPY"); img.Bounds().Dx() != 120 || img.Bounds().Dy() != 60 {
		t.Errorf("default window size = %v, want cached 120x60", img.Bounds())
	}
	// An explicit days selection must render fresh, not reuse the
	// 30-day cache.
	if img := fetch(ts.URL + "/chart/SPY?days=7"); img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("days=7 size = %v, want on-demand 200x100", img.Bounds())
	}
}

func TestChartEndpoint_BadDays(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"days=0", "days=-3", "days=abc", "days=9999"} {
		if code := doJSON(t, "GET", fmt.Sprintf("%s/chart/ACME?%s", ts.URL, q), nil, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, code)
		}
	}
}

func TestIndicatorsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var ind struct {
		LastClose float64 `json:"last_close"`
		RSI14     float64 `json:"rsi14"`
	}
	if code := doJSON(t, "GET", ts.URL+"/stocks/ACME/indicators", nil, &ind); code != http.StatusOK {
		t.Fatalf("indicators status = %d", code)
	}
	if ind.LastClose == 0 {
		t.Error("expected a non-zero last close from the mock feed")
	}
}
