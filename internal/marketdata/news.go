package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/wealthadvisor/pkg/models"
	"github.com/seenimoa/wealthadvisor/pkg/utils"
)

// NewsSource is one Indian financial news RSS feed.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the Indian market feeds read when none are configured.
var DefaultNewsSources = []NewsSource{
	{Name: "Moneycontrol", RSSURL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", RSSURL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", RSSURL: "https://www.livemint.com/rss/markets"},
	{Name: "Business Standard Markets", RSSURL: "https://www.business-standard.com/rss/markets-106.rss"},
}

// News reads headlines from RSS feeds and filters them by ticker.
type News struct {
	sources []NewsSource
	parser  *gofeed.Parser
	logger  *slog.Logger
}

// NewNews creates a headline reader. A nil or empty sources slice means
// DefaultNewsSources; a nil client means a client with DefaultTimeout.
func NewNews(sources []NewsSource, client *http.Client, logger *slog.Logger) *News {
	if len(sources) == 0 {
		sources = DefaultNewsSources
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = DefaultUserAgent
	return &News{sources: sources, parser: p, logger: logger}
}

// Headlines returns up to limit articles, newest first, whose title or
// summary mentions the ticker. Feeds that fail are skipped; an error is
// returned only when every feed failed.
func (n *News) Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	keywords := tickerKeywords(utils.NormalizeTicker(ticker))

	var (
		matched []models.NewsArticle
		errs    []error
	)
	for _, src := range n.sources {
		articles, err := n.fetchRSS(ctx, src)
		if err != nil {
			n.logger.Warn("news feed failed", "source", src.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, a := range articles {
			if matchesAny(a.Title+" "+a.Summary, keywords) {
				matched = append(matched, a)
			}
		}
	}
	if len(errs) == len(n.sources) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// fetchRSS parses one feed.
func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips markup from feed descriptions.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// companyNames maps listed symbols to the names headlines use.
var companyNames = map[string][]string{
	"RELIANCE":   {"reliance industries", "ril", "mukesh ambani"},
	"TCS":        {"tata consultancy"},
	"HDFCBANK":   {"hdfc bank"},
	"INFY":       {"infosys"},
	"ICICIBANK":  {"icici bank"},
	"HINDUNILVR": {"hindustan unilever", "hul"},
	"SBIN":       {"sbi", "state bank"},
	"BHARTIARTL": {"bharti airtel", "airtel"},
	"KOTAKBANK":  {"kotak mahindra", "kotak bank"},
	"LT":         {"larsen", "l&t"},
	"BAJFINANCE": {"bajaj finance"},
	"AXISBANK":   {"axis bank"},
	"MARUTI":     {"maruti suzuki"},
	"TATAMOTORS": {"tata motors"},
	"TATASTEEL":  {"tata steel"},
	"HCLTECH":    {"hcl tech", "hcl technologies"},
	"ASIANPAINT": {"asian paints"},
	"SUNPHARMA":  {"sun pharma", "sun pharmaceutical"},
	"ONGC":       {"oil and natural gas"},
}

// tickerKeywords returns the lower-case search terms for a normalised ticker.
func tickerKeywords(ticker string) []string {
	keywords := []string{strings.ToLower(ticker)}
	return append(keywords, companyNames[ticker]...)
}

// matchesAny reports whether text contains any keyword as a whole word.
func matchesAny(text string, keywords []string) bool {
	lower := " " + strings.Map(func(r rune) rune {
		if r == '&' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return ' '
	}, text) + " "
	for _, kw := range keywords {
		if strings.Contains(lower, " "+kw+" ") {
			return true
		}
	}
	return false
}
