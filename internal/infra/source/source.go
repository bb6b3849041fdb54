// Package source fetches timestamped news items for a report window.
package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
)

// Item is one piece of source content.
type Item struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Excerpt     string    `json:"excerpt,omitempty"`
}

// Fetcher returns the items published inside window. Errors wrap report.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, window report.Window) ([]Item, error)
}

// HTTPConfig is shared by the HTTP based fetchers.
type HTTPConfig struct {
	Client    *http.Client
	UserAgent string
	Query     []string // keywords; an item must contain at least one
}

func (c HTTPConfig) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return resp, nil
}

// Matches reports whether title or excerpt contains any keyword
// (case-insensitive). An empty query matches everything.
func Matches(item Item, query []string) bool {
	if len(query) == 0 {
		return true
	}
	text := strings.ToLower(item.Title + " " + item.Excerpt)
	for _, q := range query {
		if q = strings.ToLower(strings.TrimSpace(q)); q != "" && strings.Contains(text, q) {
			return true
		}
	}
	return false
}

func keep(item Item, window report.Window, query []string) bool {
	return item.URL != "" && !item.PublishedAt.IsZero() && window.Contains(item.PublishedAt) && Matches(item, query)
}

// cleanHTML strips markup and collapses whitespace.
func cleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// MultiFetcher queries every source in turn and merges the results.
type MultiFetcher struct {
	sources []Fetcher
	logger  *logrus.Entry
}

func NewMultiFetcher(logger *logrus.Entry, sources ...Fetcher) *MultiFetcher {
	return &MultiFetcher{sources: sources, logger: logger.WithField("component", "source")}
}

// Fetch fails as a whole when any source fails, so a report is never
// published from a partial view of the window.
func (m *MultiFetcher) Fetch(ctx context.Context, window report.Window) ([]Item, error) {
	seen := make(map[string]bool)
	var items []Item
	for _, src := range m.sources {
		got, err := src.Fetch(ctx, window)
		if err != nil {
			return nil, err
		}
		for _, it := range got {
			if seen[it.URL] {
				continue
			}
			seen[it.URL] = true
			items = append(items, it)
		}
	}
	SortItems(items)
	m.logger.WithFields(logrus.Fields{"window": window.String(), "items": len(items)}).Debug("Fetched items")
	return items, nil
}

// SortItems orders by publication time, newest first, then by URL.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		}
		return items[i].URL < items[j].URL
	})
}
