package utils

import (
	"fmt"
	"strings"
)

// Exchange identifies the Indian exchange a ticker is quoted on.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// ParseExchange accepts "NSE"/"BSE" in any case; empty means NSE.
func ParseExchange(s string) (Exchange, error) {
	switch Exchange(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ExchangeNSE:
		return ExchangeNSE, nil
	case ExchangeBSE:
		return ExchangeBSE, nil
	}
	return "", fmt.Errorf("unknown exchange %q (want NSE or BSE)", s)
}

// Suffix returns the Yahoo Finance market suffix for the exchange.
func (e Exchange) Suffix() string {
	if e == ExchangeBSE {
		return ".BO"
	}
	return ".NS"
}

// Common ticker aliases that users type instead of the listed symbol.
var tickerAliases = map[string]string{
	"RIL":           "RELIANCE",
	"INFOSYS":       "INFY",
	"HDFC BANK":     "HDFCBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBI":           "SBIN",
	"AIRTEL":        "BHARTIARTL",
	"BAJAJ FIN":     "BAJFINANCE",
	"L&T":           "LT",
	"TATA MOTORS":   "TATAMOTORS",
	"TATA STEEL":    "TATASTEEL",
	"HCL TECH":      "HCLTECH",
	"KOTAK":         "KOTAKBANK",
	"AXIS BANK":     "AXISBANK",
	"SUN PHARMA":    "SUNPHARMA",
	"ASIAN PAINTS":  "ASIANPAINT",
	"NESTLE":        "NESTLEIND",
	"ULTRATECH":     "ULTRACEMCO",
	"TECH MAHINDRA": "TECHM",
	"MAHINDRA":      "M&M",
	"HUL":           "HINDUNILVR",
	"COAL INDIA":    "COALINDIA",
}

// Index names and their Yahoo Finance symbols. Indices never take a suffix.
var indexTickers = map[string]string{
	"NIFTY":      "^NSEI",
	"NIFTY50":    "^NSEI",
	"NIFTY 50":   "^NSEI",
	"BANKNIFTY":  "^NSEBANK",
	"NIFTY BANK": "^NSEBANK",
	"NIFTYIT":    "^CNXIT",
	"NIFTY IT":   "^CNXIT",
	"FINNIFTY":   "^CNXFIN",
	"SENSEX":     "^BSESN",
}

// NormalizeTicker upper-cases, trims, strips a leading "$" and any .NS/.BO
// suffix, and resolves aliases: " ril.ns " → "RELIANCE".
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = FromYahooTicker(strings.TrimPrefix(ticker, "$"))
	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYahooTicker converts a user ticker to the symbol Yahoo Finance expects on
// the given exchange: "RELIANCE" → "RELIANCE.NS", "NIFTY" → "^NSEI".
// A suffix already on the input is replaced by the exchange's own.
func ToYahooTicker(ticker string, ex Exchange) string {
	ticker = NormalizeTicker(ticker)
	if sym, ok := indexTickers[ticker]; ok {
		return sym
	}
	return ticker + ex.Suffix()
}

// FromYahooTicker strips the .NS or .BO suffix.
func FromYahooTicker(yfTicker string) string {
	yfTicker = strings.TrimSuffix(yfTicker, ".NS")
	return strings.TrimSuffix(yfTicker, ".BO")
}

// IsIndex reports whether the ticker names a market index rather than a stock.
func IsIndex(ticker string) bool {
	_, ok := indexTickers[NormalizeTicker(ticker)]
	return ok
}
