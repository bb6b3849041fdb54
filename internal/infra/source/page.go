package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tariff_digest/internal/domain/report"
)

// PageFetcher scrapes an HTML listing page. Each element matching selector
// is one item: its first link gives title and URL, its first
// <time datetime="..."> the publication time.
type PageFetcher struct {
	url      string
	selector string
	name     string
	cfg      HTTPConfig
}

func NewPageFetcher(pageURL, selector string, cfg HTTPConfig) *PageFetcher {
	name := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		name = u.Host
	}
	return &PageFetcher{url: pageURL, selector: selector, name: name, cfg: cfg}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

func parsePublished(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *PageFetcher) Fetch(ctx context.Context, window report.Window) ([]Item, error) {
	base, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: page %s: %v", report.ErrFetch, p.url, err)
	}
	resp, err := p.cfg.get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: page %s: %v", report.ErrFetch, p.url, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: page %s: HTML parse failed: %v", report.ErrFetch, p.url, err)
	}

	loc := window.Start.Location()
	var items []Item
	doc.Find(p.selector).Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a[href]").First()
		href, _ := link.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || href == "" {
			return
		}
		it := Item{
			Source:  p.name,
			Title:   strings.Join(strings.Fields(link.Text()), " "),
			URL:     base.ResolveReference(ref).String(),
			Excerpt: strings.Join(strings.Fields(s.Find("p").First().Text()), " "),
		}
		if dt, ok := s.Find("time").First().Attr("datetime"); ok {
			if t, ok := parsePublished(dt, loc); ok {
				it.PublishedAt = t.In(loc)
			}
		}
		if keep(it, window, p.cfg.Query) {
			items = append(items, it)
		}
	})
	return items, nil
}
