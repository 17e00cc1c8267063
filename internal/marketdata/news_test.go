package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Markets</title>
<item>
  <title>Reliance Industries shares rise after Jio tariff hike</title>
  <link>https://example.com/a</link>
  <description><![CDATA[<p>RIL gained <b>2%</b> on Monday.</p>]]></description>
  <pubDate>Mon, 05 Jan 2026 10:00:00 +0530</pubDate>
</item>
<item>
  <title>TCS wins large deal</title>
  <link>https://example.com/b</link>
  <description>IT major signs contract</description>
  <pubDate>Tue, 06 Jan 2026 10:00:00 +0530</pubDate>
</item>
<item>
  <title>RIL board meets on Friday</title>
  <link>https://example.com/c</link>
  <description>Agenda includes dividend</description>
  <pubDate>Wed, 07 Jan 2026 10:00:00 +0530</pubDate>
</item>
<item>
  <title>Grilled corn prices up</title>
  <link>https://example.com/d</link>
  <description>Nothing to do with stocks</description>
  <pubDate>Thu, 08 Jan 2026 10:00:00 +0530</pubDate>
</item>
</channel></rss>`

func TestHeadlinesFiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	n := NewNews([]NewsSource{{Name: "Test", RSSURL: srv.URL}}, srv.Client(), nil)
	articles, err := n.Headlines(context.Background(), "reliance", 0)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "RIL board meets on Friday", articles[0].Title, "newest first")
	assert.Equal(t, "Reliance Industries shares rise after Jio tariff hike", articles[1].Title)
	assert.Equal(t, "RIL gained 2% on Monday.", articles[1].Summary)
	assert.Equal(t, "Test", articles[1].Source)
}

func TestHeadlinesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	n := NewNews([]NewsSource{{Name: "Test", RSSURL: srv.URL}}, srv.Client(), nil)
	articles, err := n.Headlines(context.Background(), "RELIANCE", 1)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestHeadlinesSkipsFailedFeeds(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer bad.Close()

	n := NewNews([]NewsSource{{Name: "Bad", RSSURL: bad.URL}, {Name: "Good", RSSURL: good.URL}}, nil, nil)
	articles, err := n.Headlines(context.Background(), "TCS", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "TCS wins large deal", articles[0].Title)
}

func TestHeadlinesAllFeedsFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer bad.Close()

	n := NewNews([]NewsSource{{Name: "Bad", RSSURL: bad.URL}}, nil, nil)
	_, err := n.Headlines(context.Background(), "TCS", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad")
}

func TestMatchesAnyWholeWords(t *testing.T) {
	kw := tickerKeywords("RELIANCE")
	assert.True(t, matchesAny("RIL to raise funds", kw))
	assert.True(t, matchesAny("Shares of Reliance Industries fell", kw))
	assert.False(t, matchesAny("Grilled corn festival", kw))
	assert.True(t, matchesAny("L&T bags order", tickerKeywords("LT")))
}

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "", cleanHTML(""))
	assert.Equal(t, "Hello world", cleanHTML("<p>Hello <i>world</i></p>"))
}
