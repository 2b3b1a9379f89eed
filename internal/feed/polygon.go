package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"TradeDesk/internal/model"
)

// PolygonSource fetches daily aggregates from the Polygon REST API.
type PolygonSource struct {
	client *resty.Client
}

// NewPolygonSource creates a source against baseURL (the public API
// host in production, an httptest server in tests).
func NewPolygonSource(baseURL, apiKey, proxyURL string) *PolygonSource {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &PolygonSource{client: client}
}

func (p *PolygonSource) Name() string { return "polygon" }

// aggsResponse is the relevant slice of Polygon's aggregates payload.
type aggsResponse struct {
	Ticker  string `json:"ticker"`
	Status  string `json:"status"`
	Results []struct {
		T int64   `json:"t"` // ms since epoch
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		V float64 `json:"v"`
	} `json:"results"`
}

func (p *PolygonSource) fetchAggs(ctx context.Context, path string) ([]model.OHLCV, error) {
	var out aggsResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("polygon fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("polygon: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results) == 0 {
		return nil, errors.New("polygon: no data returned")
	}

	bars := make([]model.OHLCV, len(out.Results))
	for i, r := range out.Results {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(r.T),
			Open:   r.O,
			High:   r.H,
			Low:    r.L,
			Close:  r.C,
			Volume: r.V,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (p *PolygonSource) PrevBar(ctx context.Context, ticker string) (model.OHLCV, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/prev", strings.ToUpper(ticker))
	bars, err := p.fetchAggs(ctx, path)
	if err != nil {
		return model.OHLCV{}, err
	}
	return bars[len(bars)-1], nil
}

func (p *PolygonSource) RangeBars(ctx context.Context, ticker string, from, to time.Time) ([]model.OHLCV, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		strings.ToUpper(ticker),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"))
	return p.fetchAggs(ctx, path)
}
