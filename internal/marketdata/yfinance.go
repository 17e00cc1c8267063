package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/wealthadvisor/pkg/models"
)

// DefaultYahooBaseURL is the Yahoo Finance v8 chart endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YFinance fetches daily OHLCV history from the Yahoo Finance chart API.
// It holds no mutable state and is safe for concurrent use.
type YFinance struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// YFinanceOption configures the Yahoo Finance client.
type YFinanceOption func(*YFinance)

// WithBaseURL points the client at a different chart endpoint (tests, proxies).
func WithBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) YFinanceOption {
	return func(y *YFinance) { y.client = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) YFinanceOption {
	return func(y *YFinance) { y.logger = l }
}

// NewYFinance creates a Yahoo Finance history client.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: DefaultYahooBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistory returns daily bars for yfTicker (already suffixed, e.g.
// "RELIANCE.NS") over the given period, oldest first.
//
// A ticker Yahoo does not know, or a range without bars, yields ErrNoData.
// Everything else that goes wrong is a *TransportError.
func (y *YFinance) FetchHistory(ctx context.Context, yfTicker string, period Period) (models.Series, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("unsupported period %q", period)
	}

	u := fmt.Sprintf("%s/%s?range=%s&interval=1d&includePrePost=false",
		y.baseURL, url.PathEscape(yfTicker), period)

	start := time.Now()
	body, status, err := doGet(ctx, y.client, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w for %s", ErrNoData, yfTicker)
		}
		return nil, &TransportError{Op: "chart", Ticker: yfTicker, StatusCode: status, Err: err}
	}
	defer body.Close()

	var resp yfChartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, &TransportError{Op: "chart", Ticker: yfTicker, StatusCode: status, Err: fmt.Errorf("decode: %w", err)}
	}

	if e := resp.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w for %s: %s", ErrNoData, yfTicker, e.Description)
		}
		return nil, &TransportError{Op: "chart", Ticker: yfTicker, StatusCode: status, Err: fmt.Errorf("%s: %s", e.Code, e.Description)}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, yfTicker)
	}

	series := parseYFCandles(resp.Chart.Result[0])
	y.logger.Debug("yfinance history",
		"ticker", yfTicker, "period", string(period), "bars", len(series), "elapsed", time.Since(start))

	if series.Empty() {
		return nil, fmt.Errorf("%w for %s", ErrNoData, yfTicker)
	}
	return series, nil
}

// parseYFCandles zips the column arrays into bars. Rows with a missing
// open/high/low/close (Yahoo emits nulls for halted sessions) are dropped.
func parseYFCandles(result yfChartResult) models.Series {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	at := func(col []*float64, i int) (float64, bool) {
		if i < len(col) && col[i] != nil {
			return *col[i], true
		}
		return 0, false
	}

	series := make(models.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(q.Open, i)
		h, ok2 := at(q.High, i)
		l, ok3 := at(q.Low, i)
		c, ok4 := at(q.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		bar := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		series = append(series, bar)
	}
	return series
}
