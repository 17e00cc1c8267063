// Package advisor is the wealth advisor facade: it fetches price history,
// condenses it into prompts and asks a text generator for insights, a wealth
// strategy or predictions.
//
// Operations never return transport or generation failures as Go errors; they
// are reported inside the returned Result or Predictions. The only Go error is
// a malformed profile (see DecodeProfile).
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seenimoa/wealthadvisor/internal/marketdata"
	"github.com/seenimoa/wealthadvisor/internal/prompts"
	"github.com/seenimoa/wealthadvisor/pkg/models"
	"github.com/seenimoa/wealthadvisor/pkg/utils"
)

// HistoryFetcher returns daily bars for a Yahoo-style ticker ("RELIANCE.NS").
// An empty history is reported as marketdata.ErrNoData.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, yfTicker string, period marketdata.Period) (models.Series, error)
}

// TextGenerator completes a free-text prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HeadlineSource supplies recent news headlines for a ticker.
type HeadlineSource interface {
	Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// NoDataAvailable is the prediction placeholder for a symbol without history.
const NoDataAvailable = "No data available"

// ErrEmptySymbol is reported for a blank ticker.
var ErrEmptySymbol = errors.New("symbol must not be empty")

// Advisor composes a HistoryFetcher and a TextGenerator. It keeps no state
// between calls and is safe for concurrent use.
type Advisor struct {
	market    HistoryFetcher
	gen       TextGenerator
	news      HeadlineSource
	newsLimit int
	exchange  utils.Exchange
	logger    *slog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithExchange selects the exchange whose suffix is appended to tickers.
func WithExchange(ex utils.Exchange) Option {
	return func(a *Advisor) { a.exchange = ex }
}

// WithHeadlines adds up to limit recent headlines to insights prompts.
func WithHeadlines(src HeadlineSource, limit int) Option {
	return func(a *Advisor) {
		a.news = src
		a.newsLimit = limit
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Advisor) { a.logger = l }
}

// New creates an Advisor over the given collaborators.
func New(market HistoryFetcher, gen TextGenerator, opts ...Option) *Advisor {
	a := &Advisor{
		market:   market,
		gen:      gen,
		exchange: utils.ExchangeNSE,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Exchange returns the exchange tickers are resolved against.
func (a *Advisor) Exchange() utils.Exchange { return a.exchange }

// GetMarketInsights analyses six months of history for symbol.
func (a *Advisor) GetMarketInsights(ctx context.Context, symbol string) Result {
	sum, err := a.summarize(ctx, symbol, marketdata.Period6Mo)
	switch {
	case marketdata.IsNoData(err):
		return errorResult(fmt.Sprintf("No data found for symbol %s", symbol))
	case err != nil:
		return errorResult(err.Error())
	}

	text, err := a.gen.Generate(ctx, prompts.Insights(sum, a.headlines(ctx, symbol)))
	if err != nil {
		a.logger.Warn("insights generation failed", "symbol", symbol, "error", err)
		return errorResult(err.Error())
	}
	return Result{Kind: KindInsights, Text: text}
}

// CreateWealthStrategy asks for a strategy tailored to p. Field values are
// forwarded as given.
func (a *Advisor) CreateWealthStrategy(ctx context.Context, p models.Profile) Result {
	text, err := a.gen.Generate(ctx, prompts.Strategy(p))
	if err != nil {
		a.logger.Warn("strategy generation failed", "error", err)
		return errorResult(err.Error())
	}
	return Result{Kind: KindStrategy, Text: text}
}

// CreateWealthStrategyFromMap decodes raw into a profile first. A missing
// field is returned as a *MissingFieldError and no result is produced.
func (a *Advisor) CreateWealthStrategyFromMap(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := DecodeProfile(raw)
	if err != nil {
		return Result{}, err
	}
	return a.CreateWealthStrategy(ctx, p), nil
}

// GetAIPredictions requests a six-month outlook for each symbol, one after
// another, in input order. A failing symbol gets its failure text and does
// not stop the batch.
func (a *Advisor) GetAIPredictions(ctx context.Context, symbols []string) Predictions {
	preds := make(Predictions, 0, len(symbols))
	for _, symbol := range symbols {
		preds = preds.set(a.predict(ctx, symbol))
	}
	return preds
}

func (a *Advisor) predict(ctx context.Context, symbol string) Prediction {
	sum, err := a.summarize(ctx, symbol, marketdata.Period1Y)
	switch {
	case marketdata.IsNoData(err):
		return Prediction{Symbol: symbol, Error: NoDataAvailable}
	case err != nil:
		return Prediction{Symbol: symbol, Error: err.Error()}
	}

	text, err := a.gen.Generate(ctx, prompts.Prediction(sum))
	if err != nil {
		a.logger.Warn("prediction generation failed", "symbol", symbol, "error", err)
		return Prediction{Symbol: symbol, Error: err.Error()}
	}
	return Prediction{Symbol: symbol, Text: text}
}

// summarize is the single path from a symbol to a price summary. It yields a
// summary, an ErrNoData-wrapping error, or the fetch failure.
func (a *Advisor) summarize(ctx context.Context, symbol string, period marketdata.Period) (models.PriceSummary, error) {
	if strings.TrimSpace(symbol) == "" {
		return models.PriceSummary{}, ErrEmptySymbol
	}

	yfTicker := utils.ToYahooTicker(symbol, a.exchange)
	series, err := a.market.FetchHistory(ctx, yfTicker, period)
	if err != nil {
		if !marketdata.IsNoData(err) {
			a.logger.Warn("history fetch failed", "ticker", yfTicker, "period", string(period), "error", err)
		}
		return models.PriceSummary{}, err
	}

	name := utils.NormalizeTicker(symbol)
	exchange := string(a.exchange)
	if utils.IsIndex(name) {
		exchange = ""
	}
	sum, ok := models.Summarize(name, exchange, series)
	if !ok {
		return models.PriceSummary{}, fmt.Errorf("%w for %s", marketdata.ErrNoData, yfTicker)
	}
	a.logger.Debug("history summarized", "ticker", yfTicker, "period", string(period), "bars", sum.Bars)
	return sum, nil
}

// headlines returns recent news for symbol, or nil when headline context is
// disabled or unavailable.
func (a *Advisor) headlines(ctx context.Context, symbol string) []models.NewsArticle {
	if a.news == nil {
		return nil
	}
	articles, err := a.news.Headlines(ctx, symbol, a.newsLimit)
	if err != nil {
		a.logger.Warn("headlines unavailable", "symbol", symbol, "error", err)
		return nil
	}
	return articles
}
