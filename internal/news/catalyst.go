// Package news fetches recent catalyst headlines for a symbol, preferring
// the Alpaca news API and falling back to Google News RSS.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/util"
)

// Headline is a single catalyst headline from any source.
type Headline struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Fetcher fetches catalyst headlines with a shared rate limit so request
// bursts from the feed UI don't hammer the upstream news APIs.
type Fetcher struct {
	mdc     *marketdata.Client // nil when Alpaca credentials are absent
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewFetcher creates a Fetcher. With empty Alpaca credentials only the RSS
// source is used. perMinute caps upstream requests across all callers.
func NewFetcher(apiKey, apiSecret string, perMinute int) *Fetcher {
	f := &Fetcher{
		limiter: util.NewRateLimiter(perMinute),
		log:     slog.Default().With("component", "news"),
	}
	if apiKey != "" && apiSecret != "" {
		f.mdc = marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		})
	}
	return f
}

// Fetch returns up to limit headlines for symbol within the lookback window,
// newest first. Alpaca errors fall through to the RSS source.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, lookback time.Duration, limit int) ([]Headline, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	end := time.Now()
	start := end.Add(-lookback)

	var headlines []Headline
	if f.mdc != nil {
		got, err := f.fetchAlpaca(symbol, start, end)
		if err != nil {
			f.log.Warn("alpaca news failed, falling back to rss", "symbol", symbol, "err", err)
		} else {
			headlines = got
		}
	}
	if len(headlines) == 0 {
		got, err := fetchGoogleNews(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		headlines = got
	}

	sort.Slice(headlines, func(i, j int) bool {
		return headlines[i].Time.After(headlines[j].Time)
	})
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	return headlines, nil
}

// --- Alpaca ---

func (f *Fetcher) fetchAlpaca(symbol string, start, end time.Time) ([]Headline, error) {
	articles, err := f.mdc.GetNews(marketdata.GetNewsRequest{
		Symbols:            []string{symbol},
		Start:              start,
		End:                end,
		TotalLimit:         50,
		ExcludeContentless: true,
		Sort:               marketdata.SortDesc,
	})
	if err != nil {
		return nil, err
	}

	headlines := make([]Headline, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, Headline{
			Time:    a.CreatedAt,
			Source:  "alpaca",
			Title:   a.Headline,
			Summary: StripHTML(a.Summary),
		})
	}
	return headlines, nil
}

// --- Google News RSS ---

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
	Desc    string `xml:"description"`
}

func fetchGoogleNews(ctx context.Context, symbol string, start, end time.Time) ([]Headline, error) {
	q := url.QueryEscape(symbol + " stock")
	u := "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news status %d", resp.StatusCode)
	}
	return parseRSS(resp.Body, start, end)
}

// parseRSS decodes an RSS feed into headlines within [start, end].
func parseRSS(r io.Reader, start, end time.Time) ([]Headline, error) {
	var rss rssResponse
	if err := xml.NewDecoder(r).Decode(&rss); err != nil {
		return nil, err
	}

	var headlines []Headline
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				continue
			}
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		title := item.Title
		// Google appends " - Publisher" to every title.
		if idx := strings.LastIndex(title, " - "); idx > 0 {
			title = title[:idx]
		}
		headlines = append(headlines, Headline{
			Time:    t,
			Source:  "google",
			Title:   title,
			Summary: StripHTML(item.Desc),
		})
	}
	return headlines, nil
}

// --- HTML helpers ---

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
