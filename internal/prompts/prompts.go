// Package prompts builds the Gemini prompts for the advisor. Every builder is
// a pure function of its inputs so prompt text can be tested without a client.
package prompts

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/wealthadvisor/pkg/models"
)

// insightsTemplate takes the market context block.
const insightsTemplate = `As a financial expert familiar with the Indian stock market, analyze this market data and provide:
1. Market sentiment considering Indian economic conditions
2. Key risks including regulatory and market-specific factors
3. Growth potential in the Indian market context
4. Investment recommendation considering Indian investor perspective

Data:
%s`

// strategyTemplate takes the profile block.
const strategyTemplate = `Create a comprehensive wealth building strategy for this Indian investor:
%s

Include:
1. Asset allocation (including Indian equity, debt, and gold)
2. Investment vehicles (mutual funds, stocks, FDs, PPF, NPS)
3. Risk management strategy
4. Tax optimization suggestions under Indian tax laws
5. Specific action steps for Indian market`

// predictionTemplate takes the stock label, current price, 52-week low and high.
const predictionTemplate = `Based on this Indian stock's performance data, provide a 6-month prediction:
Symbol: %s
Current Price: ₹%.2f
52-week range: ₹%.2f - ₹%.2f

Consider Indian market conditions, economic factors, and potential catalysts.`

// MarketContext renders the data block embedded in the insights prompt.
func MarketContext(s models.PriceSummary) string {
	return fmt.Sprintf(`Stock: %s
Current Price: ₹%.2f
6-Month High: ₹%.2f
6-Month Low: ₹%.2f
Volume: %s`,
		stockLabel(s), s.CurrentPrice, s.PeriodHigh, s.PeriodLow, humanize.Comma(s.LastVolume))
}

// stockLabel is "RELIANCE (NSE)", or the bare name for indices, which carry
// no exchange.
func stockLabel(s models.PriceSummary) string {
	if s.Exchange == "" {
		return s.Ticker
	}
	return s.Ticker + " (" + s.Exchange + ")"
}

// Insights builds the market-insights prompt. Headlines, when present, are
// appended after the data block.
func Insights(s models.PriceSummary, headlines []models.NewsArticle) string {
	prompt := fmt.Sprintf(insightsTemplate, MarketContext(s))
	if len(headlines) == 0 {
		return prompt
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nRecent Headlines:")
	for _, h := range headlines {
		sb.WriteString("\n- ")
		sb.WriteString(h.Title)
		switch {
		case h.Source != "" && !h.PublishedAt.IsZero():
			fmt.Fprintf(&sb, " (%s, %s)", h.Source, h.PublishedAt.Format("02-Jan-2006"))
		case h.Source != "":
			fmt.Fprintf(&sb, " (%s)", h.Source)
		}
	}
	return sb.String()
}

// ProfileContext renders the investor profile block.
func ProfileContext(p models.Profile) string {
	return fmt.Sprintf(`Profile:
- Age: %d
- Income: ₹%s
- Risk tolerance: %d/10
- Investment goals: %s
- Time horizon: %d years`,
		p.Age, FormatAmount(p.Income), p.RiskTolerance, p.Goals, p.TimeHorizon)
}

// Strategy builds the wealth-strategy prompt.
func Strategy(p models.Profile) string {
	return fmt.Sprintf(strategyTemplate, ProfileContext(p))
}

// Prediction builds the 6-month prediction prompt from a one-year summary.
func Prediction(s models.PriceSummary) string {
	return fmt.Sprintf(predictionTemplate, stockLabel(s), s.CurrentPrice, s.PeriodLow, s.PeriodHigh)
}

// FormatAmount groups thousands with commas: 1500000 → "1,500,000",
// 1234.5 → "1,234.5".
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return humanize.BigComma(d.BigInt())
	}
	return humanize.CommafWithDigits(d.InexactFloat64(), 2)
}
