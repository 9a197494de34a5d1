package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/investdash/pkg/models"
)

// News implements HeadlineSource over a per-symbol RSS feed.
type News struct {
	feedURL string // contains one %s for the symbol
	parser  *gofeed.Parser
}

// NewNews creates a headline source. feedURL must contain one %s verb.
func NewNews(feedURL string, timeout time.Duration, userAgent string) *News {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = userAgent
	return &News{feedURL: feedURL, parser: p}
}

// Headlines returns up to limit items from the symbol's feed, newest first.
// A limit of zero or less returns every item.
func (n *News) Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error) {
	u := fmt.Sprintf(n.feedURL, url.QueryEscape(symbol))
	feed, err := n.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}

	headlines := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		h := models.Headline{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			h.Published = *item.PublishedParsed
		}
		headlines = append(headlines, h)
	}

	slices.SortStableFunc(headlines, func(a, b models.Headline) int {
		return b.Published.Compare(a.Published)
	})
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	return headlines, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
