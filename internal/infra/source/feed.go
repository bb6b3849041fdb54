package source

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"

	"tariff_digest/internal/domain/report"
)

// FeedFetcher reads an RSS or Atom feed.
type FeedFetcher struct {
	url  string
	name string
	cfg  HTTPConfig
}

func NewFeedFetcher(feedURL string, cfg HTTPConfig) *FeedFetcher {
	name := feedURL
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		name = u.Host
	}
	return &FeedFetcher{url: feedURL, name: name, cfg: cfg}
}

func (f *FeedFetcher) Fetch(ctx context.Context, window report.Window) ([]Item, error) {
	resp, err := f.cfg.get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: %v", report.ErrFetch, f.url, err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: feed %s: RSS parse failed: %v", report.ErrFetch, f.url, err)
	}

	var items []Item
	for _, fi := range feed.Items {
		it := Item{
			Source:  f.name,
			Title:   cleanHTML(fi.Title),
			URL:     fi.Link,
			Excerpt: feedExcerpt(fi),
		}
		switch {
		case fi.PublishedParsed != nil:
			it.PublishedAt = fi.PublishedParsed.In(window.Start.Location())
		case fi.UpdatedParsed != nil:
			it.PublishedAt = fi.UpdatedParsed.In(window.Start.Location())
		}
		if keep(it, window, f.cfg.Query) {
			items = append(items, it)
		}
	}
	return items, nil
}

// feedExcerpt prefers Description over full Content.
func feedExcerpt(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	text := cleanHTML(raw)
	if r := []rune(text); len(r) > 280 {
		text = string(r[:280]) + "…"
	}
	return text
}
