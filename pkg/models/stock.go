// Package models defines the core data structures shared across wealthadvisor.
package models

import "time"

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series is an ordered (oldest first) price history for one ticker.
type Series []OHLCV

// Empty reports whether the series holds no bars.
func (s Series) Empty() bool { return len(s) == 0 }

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (bar OHLCV, ok bool) {
	if len(s) == 0 {
		return OHLCV{}, false
	}
	return s[len(s)-1], true
}

// HighestHigh returns the maximum High across the series (0 when empty).
func (s Series) HighestHigh() float64 {
	if len(s) == 0 {
		return 0
	}
	hi := s[0].High
	for _, b := range s[1:] {
		if b.High > hi {
			hi = b.High
		}
	}
	return hi
}

// LowestLow returns the minimum Low across the series (0 when empty).
func (s Series) LowestLow() float64 {
	if len(s) == 0 {
		return 0
	}
	lo := s[0].Low
	for _, b := range s[1:] {
		if b.Low < lo {
			lo = b.Low
		}
	}
	return lo
}

// PriceSummary is the condensed view of a Series that prompts are built from.
type PriceSummary struct {
	Ticker       string  `json:"ticker"`   // e.g., "RELIANCE"
	Exchange     string  `json:"exchange"` // "NSE" or "BSE"
	CurrentPrice float64 `json:"current_price"`
	PeriodHigh   float64 `json:"period_high"`
	PeriodLow    float64 `json:"period_low"`
	LastVolume   int64   `json:"last_volume"`
	Bars         int     `json:"bars"`
}

// Summarize condenses a non-empty series. ok is false when s is empty.
func Summarize(ticker, exchange string, s Series) (sum PriceSummary, ok bool) {
	last, ok := s.Last()
	if !ok {
		return PriceSummary{}, false
	}
	return PriceSummary{
		Ticker:       ticker,
		Exchange:     exchange,
		CurrentPrice: last.Close,
		PeriodHigh:   s.HighestHigh(),
		PeriodLow:    s.LowestLow(),
		LastVolume:   last.Volume,
		Bars:         len(s),
	}, true
}
