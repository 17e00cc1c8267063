// Package marketdata fetches daily price history for Indian equities from
// Yahoo Finance and, optionally, recent headlines from Indian market RSS feeds.
//
// Every history lookup resolves to exactly one of three outcomes: a non-empty
// series, ErrNoData, or a *TransportError.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Period is a Yahoo Finance lookback range.
type Period string

const (
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
)

// Valid reports whether p is a supported lookback.
func (p Period) Valid() bool {
	return p == Period6Mo || p == Period1Y
}

// ErrNoData is returned when the source has no bars for the ticker and period.
var ErrNoData = errors.New("no data found")

// TransportError wraps any failure talking to the data source: network,
// non-2xx status, or an undecodable body.
type TransportError struct {
	Op         string // e.g. "chart"
	Ticker     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Op, e.Ticker, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Ticker, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNoData reports whether err means "no bars", as opposed to a failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// DefaultUserAgent is sent with every request; Yahoo rejects blank agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 30 * time.Second

// httpStatusError carries a non-2xx response body excerpt.
type httpStatusError struct {
	Status string
	Body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Body)
}

// doGet performs a GET and returns the open body for 2xx responses.
// For other statuses the body excerpt is returned inside *httpStatusError
// together with the status code. The caller closes the returned body.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &httpStatusError{Status: resp.Status, Body: string(body)}
	}

	return resp.Body, resp.StatusCode, nil
}
