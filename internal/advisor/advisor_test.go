package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/wealthadvisor/internal/marketdata"
	"github.com/seenimoa/wealthadvisor/pkg/models"
	"github.com/seenimoa/wealthadvisor/pkg/utils"
)

type fetchCall struct {
	ticker string
	period marketdata.Period
}

type stubFetcher struct {
	series map[string]models.Series
	errs   map[string]error
	calls  []fetchCall
}

func (s *stubFetcher) FetchHistory(_ context.Context, ticker string, period marketdata.Period) (models.Series, error) {
	s.calls = append(s.calls, fetchCall{ticker, period})
	if err, ok := s.errs[ticker]; ok {
		return nil, err
	}
	return s.series[ticker], nil
}

type stubGenerator struct {
	prompts []string
	reply   func(n int, prompt string) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.reply == nil {
		return "generated", nil
	}
	return g.reply(len(g.prompts), prompt)
}

type stubHeadlines struct {
	articles []models.NewsArticle
	err      error
}

func (h stubHeadlines) Headlines(context.Context, string, int) ([]models.NewsArticle, error) {
	return h.articles, h.err
}

// testSeries closes at 100 with a 120 high, a 90 low and 500000 shares on the last day.
func testSeries() models.Series {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return models.Series{
		{Timestamp: day, Open: 95, High: 110, Low: 92, Close: 105, Volume: 1200000},
		{Timestamp: day.AddDate(0, 0, 1), Open: 105, High: 120, Low: 101, Close: 118, Volume: 900000},
		{Timestamp: day.AddDate(0, 0, 2), Open: 118, High: 119, Low: 90, Close: 100, Volume: 500000},
	}
}

func testProfile() models.Profile {
	return models.Profile{
		Age:           30,
		Income:        decimal.NewFromInt(1500000),
		RiskTolerance: 7,
		Goals:         "Build long-term wealth and retire early",
		TimeHorizon:   25,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdvisor(f *stubFetcher, g *stubGenerator, opts ...Option) *Advisor {
	return New(f, g, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestGetMarketInsightsEchoesMarketData(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TEST.NS": testSeries()}}
	g := &stubGenerator{reply: func(int, string) (string, error) { return "bullish outlook", nil }}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "TEST")

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, KindInsights, res.Kind)
	assert.Equal(t, "bullish outlook", res.Text)

	require.Equal(t, []fetchCall{{"TEST.NS", marketdata.Period6Mo}}, f.calls)
	require.Len(t, g.prompts, 1)
	prompt := g.prompts[0]
	for _, want := range []string{"TEST", "NSE", "₹100.00", "₹120.00", "₹90.00", "Volume: 500,000"} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "Recent Headlines")
}

func TestGetMarketInsightsNoData(t *testing.T) {
	f := &stubFetcher{}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "TEST")

	assert.True(t, res.Failed())
	assert.Equal(t, "No data found for symbol TEST", res.Error)
	assert.Empty(t, res.Text)
	assert.Empty(t, g.prompts, "generator must not be called without data")
}

func TestGetMarketInsightsNoDataError(t *testing.T) {
	f := &stubFetcher{errs: map[string]error{"TEST.NS": fmt.Errorf("%w for TEST.NS", marketdata.ErrNoData)}}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "TEST")

	assert.Equal(t, "No data found for symbol TEST", res.Error)
	assert.Empty(t, g.prompts)
}

func TestGetMarketInsightsFetchFailure(t *testing.T) {
	terr := &marketdata.TransportError{Op: "chart", Ticker: "TEST.NS", Err: errors.New("connection refused")}
	f := &stubFetcher{errs: map[string]error{"TEST.NS": terr}}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "TEST")

	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "connection refused")
	assert.Empty(t, g.prompts)
}

func TestGetMarketInsightsGenerationFailure(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TEST.NS": testSeries()}}
	g := &stubGenerator{reply: func(int, string) (string, error) { return "", errors.New("quota exceeded") }}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "TEST")

	assert.Equal(t, "quota exceeded", res.Error)
	assert.Empty(t, res.Text)
}

func TestGetMarketInsightsEmptySymbol(t *testing.T) {
	f := &stubFetcher{}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "  ")

	assert.Equal(t, ErrEmptySymbol.Error(), res.Error)
	assert.Empty(t, f.calls)
}

func TestGetMarketInsightsBSE(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TEST.BO": testSeries()}}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g, WithExchange(utils.ExchangeBSE)).GetMarketInsights(context.Background(), "test")

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "TEST.BO", f.calls[0].ticker)
	assert.Contains(t, g.prompts[0], "TEST (BSE)")
}

func TestGetMarketInsightsSuffixedSymbolBSE(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"RELIANCE.BO": testSeries()}}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g, WithExchange(utils.ExchangeBSE)).GetMarketInsights(context.Background(), "RELIANCE.NS")

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "RELIANCE.BO", f.calls[0].ticker)
	assert.Contains(t, g.prompts[0], "Stock: RELIANCE (BSE)")
}

func TestGetMarketInsightsIndex(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"^NSEI": testSeries()}}
	g := &stubGenerator{}

	res := newTestAdvisor(f, g).GetMarketInsights(context.Background(), "nifty")

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "^NSEI", f.calls[0].ticker)
	assert.Contains(t, g.prompts[0], "Stock: NIFTY\n")
	assert.NotContains(t, g.prompts[0], "(NSE)")
}

func TestGetMarketInsightsWithHeadlines(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TEST.NS": testSeries()}}
	g := &stubGenerator{}
	news := stubHeadlines{articles: []models.NewsArticle{
		{Title: "Test Ltd posts record profit", Source: "Moneycontrol", PublishedAt: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
	}}

	res := newTestAdvisor(f, g, WithHeadlines(news, 5)).GetMarketInsights(context.Background(), "TEST")

	require.False(t, res.Failed(), res.Error)
	assert.Contains(t, g.prompts[0], "Recent Headlines:")
	assert.Contains(t, g.prompts[0], "- Test Ltd posts record profit (Moneycontrol, 16-Oct-2026)")
}

func TestGetMarketInsightsHeadlineFailureIgnored(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TEST.NS": testSeries()}}
	g := &stubGenerator{}
	news := stubHeadlines{err: errors.New("all feeds failed")}

	res := newTestAdvisor(f, g, WithHeadlines(news, 5)).GetMarketInsights(context.Background(), "TEST")

	require.False(t, res.Failed(), res.Error)
	assert.NotContains(t, g.prompts[0], "Recent Headlines")
}

func TestCreateWealthStrategy(t *testing.T) {
	f := &stubFetcher{}
	g := &stubGenerator{reply: func(int, string) (string, error) { return "plan", nil }}

	res := newTestAdvisor(f, g).CreateWealthStrategy(context.Background(), testProfile())

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, KindStrategy, res.Kind)
	assert.Equal(t, "plan", res.Text)
	assert.Empty(t, f.calls, "strategy must not touch market data")

	require.Len(t, g.prompts, 1)
	for _, want := range []string{
		"Age: 30",
		"Income: ₹1,500,000",
		"Risk tolerance: 7/10",
		"Investment goals: Build long-term wealth and retire early",
		"Time horizon: 25 years",
	} {
		assert.Contains(t, g.prompts[0], want)
	}
}

func TestCreateWealthStrategyGenerationFailure(t *testing.T) {
	g := &stubGenerator{reply: func(int, string) (string, error) { return "", errors.New("provider down") }}

	res := newTestAdvisor(&stubFetcher{}, g).CreateWealthStrategy(context.Background(), testProfile())

	assert.Equal(t, "provider down", res.Error)
}

func TestCreateWealthStrategyFromMapMissingField(t *testing.T) {
	g := &stubGenerator{}
	raw := map[string]any{"age": 30, "risk_tolerance": 7, "goals": "x", "time_horizon": 25}

	_, err := newTestAdvisor(&stubFetcher{}, g).CreateWealthStrategyFromMap(context.Background(), raw)

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "income", mfe.Field)
	assert.Empty(t, g.prompts)
}

func TestCreateWealthStrategyFromMap(t *testing.T) {
	g := &stubGenerator{}
	raw := map[string]any{
		"age":            "30",
		"income":         1500000,
		"risk_tolerance": 7,
		"goals":          "Build long-term wealth and retire early",
		"time_horizon":   25,
		"city":           "Pune",
	}

	res, err := newTestAdvisor(&stubFetcher{}, g).CreateWealthStrategyFromMap(context.Background(), raw)
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Contains(t, g.prompts[0], "Income: ₹1,500,000")
}

func TestGetAIPredictions(t *testing.T) {
	f := &stubFetcher{
		series: map[string]models.Series{"RELIANCE.NS": testSeries(), "HDFCBANK.NS": testSeries()},
		errs:   map[string]error{"INFY.NS": &marketdata.TransportError{Op: "chart", Ticker: "INFY.NS", StatusCode: 500, Err: errors.New("boom")}},
	}
	g := &stubGenerator{reply: func(n int, _ string) (string, error) { return fmt.Sprintf("outlook %d", n), nil }}

	preds := newTestAdvisor(f, g).GetAIPredictions(context.Background(), []string{"RELIANCE", "TCS", "INFY", "HDFCBANK"})

	require.Len(t, preds, 4)
	assert.Equal(t, []string{"RELIANCE", "TCS", "INFY", "HDFCBANK"}, symbolsOf(preds))

	rel, ok := preds.Get("RELIANCE")
	require.True(t, ok)
	assert.Equal(t, "outlook 1", rel.Text)

	tcs, _ := preds.Get("TCS")
	assert.True(t, tcs.Failed())
	assert.Equal(t, NoDataAvailable, tcs.Value())

	infy, _ := preds.Get("INFY")
	assert.True(t, infy.Failed())
	assert.Contains(t, infy.Error, "boom")

	hdfc, _ := preds.Get("HDFCBANK")
	assert.Equal(t, "outlook 2", hdfc.Text)

	for _, c := range f.calls {
		assert.Equal(t, marketdata.Period1Y, c.period)
	}
	require.Len(t, g.prompts, 2)
	assert.Contains(t, g.prompts[0], "Symbol: RELIANCE (NSE)")
	assert.Contains(t, g.prompts[0], "Current Price: ₹100.00")
	assert.Contains(t, g.prompts[0], "52-week range: ₹90.00 - ₹120.00")
}

func TestGetAIPredictionsGenerationFailureContinues(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"A.NS": testSeries(), "B.NS": testSeries()}}
	g := &stubGenerator{reply: func(n int, _ string) (string, error) {
		if n == 1 {
			return "", errors.New("rate limited")
		}
		return "ok", nil
	}}

	preds := newTestAdvisor(f, g).GetAIPredictions(context.Background(), []string{"A", "B"})

	a, _ := preds.Get("A")
	b, _ := preds.Get("B")
	assert.Equal(t, "rate limited", a.Error)
	assert.Equal(t, "ok", b.Text)
}

func TestGetAIPredictionsEmpty(t *testing.T) {
	f := &stubFetcher{}
	g := &stubGenerator{}

	preds := newTestAdvisor(f, g).GetAIPredictions(context.Background(), nil)

	assert.Empty(t, preds)
	assert.Empty(t, f.calls)
	assert.Empty(t, g.prompts)

	out, err := json.Marshal(preds)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestGetAIPredictionsDuplicateSymbols(t *testing.T) {
	f := &stubFetcher{series: map[string]models.Series{"TCS.NS": testSeries(), "INFY.NS": testSeries()}}
	g := &stubGenerator{reply: func(n int, _ string) (string, error) { return fmt.Sprintf("call %d", n), nil }}

	preds := newTestAdvisor(f, g).GetAIPredictions(context.Background(), []string{"TCS", "INFY", "TCS"})

	assert.Equal(t, []string{"TCS", "INFY"}, symbolsOf(preds))
	tcs, _ := preds.Get("TCS")
	assert.Equal(t, "call 3", tcs.Text, "last occurrence wins")
}

func TestResultJSON(t *testing.T) {
	out, err := json.Marshal(Result{Kind: KindInsights, Text: "up"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"insights":"up"}`, string(out))

	out, err = json.Marshal(errorResult("No data found for symbol TEST"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No data found for symbol TEST"}`, string(out))

	out, err = json.Marshal(Result{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	out, err = json.Marshal(Result{Text: "orphan"})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestPredictionsJSONKeepsOrder(t *testing.T) {
	preds := Predictions{
		{Symbol: "TCS", Text: "up"},
		{Symbol: "RELIANCE", Error: NoDataAvailable},
	}
	out, err := json.Marshal(preds)
	require.NoError(t, err)
	assert.Equal(t, `{"TCS":"up","RELIANCE":"No data available"}`, string(out))
	assert.Equal(t, "TCS: up\n\nRELIANCE: No data available", preds.String())
}

func TestDecodeProfileMissingFields(t *testing.T) {
	_, err := DecodeProfile(map[string]any{"goals": "x", "age": nil})

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "age", mfe.Field)
	assert.Equal(t, []string{"age", "income", "risk_tolerance", "time_horizon"}, mfe.Missing)
}

func TestDecodeProfileIncomeForms(t *testing.T) {
	base := func(income any) map[string]any {
		return map[string]any{"age": 40, "income": income, "risk_tolerance": 3, "goals": "g", "time_horizon": 10}
	}

	tests := []struct {
		name   string
		income any
		want   string
	}{
		{"int", 1200000, "1200000"},
		{"float", 1250000.5, "1250000.5"},
		{"string", " 980000.25 ", "980000.25"},
		{"json number", json.Number("750000"), "750000"},
		{"uint64", uint64(1500000), "1500000"},
		{"uint", uint(42000), "42000"},
		{"uint64 above int64", uint64(18446744073709551615), "18446744073709551615"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeProfile(base(tt.income))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Income.String())
			assert.Equal(t, 40, p.Age)
		})
	}
}

func TestDecodeProfileBadIncome(t *testing.T) {
	_, err := DecodeProfile(map[string]any{"age": 40, "income": "lots", "risk_tolerance": 3, "goals": "g", "time_horizon": 10})
	require.Error(t, err)

	var mfe *MissingFieldError
	assert.False(t, errors.As(err, &mfe))
}

func TestDecodeProfileIntegralFields(t *testing.T) {
	base := func(age any) map[string]any {
		return map[string]any{"age": age, "income": 1, "risk_tolerance": 3, "goals": "g", "time_horizon": 10}
	}

	p, err := DecodeProfile(base(30.0))
	require.NoError(t, err)
	assert.Equal(t, 30, p.Age)

	p, err = DecodeProfile(base("31"))
	require.NoError(t, err)
	assert.Equal(t, 31, p.Age)

	for _, age := range []any{30.7, float32(29.5), "30.7"} {
		_, err := DecodeProfile(base(age))
		require.Error(t, err, "age %v", age)
		var mfe *MissingFieldError
		assert.False(t, errors.As(err, &mfe), "age %v", age)
	}
}

func TestLoadProfileRejectsFractionalAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	doc := "age: 30.7\nincome: 1500000\nrisk_tolerance: 7\ngoals: g\ntime_horizon: 25\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := LoadProfile(path)
	assert.ErrorContains(t, err, "age")
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	doc := "age: 30\nincome: 1500000\nrisk_tolerance: 7\ngoals: Build long-term wealth and retire early\ntime_horizon: 25\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Age)
	assert.True(t, p.Income.Equal(decimal.NewFromInt(1500000)))
	assert.Equal(t, 7, p.RiskTolerance)
	assert.Equal(t, 25, p.TimeHorizon)
}

func symbolsOf(ps Predictions) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Symbol
	}
	return out
}
