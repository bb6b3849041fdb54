// Package page publishes one static HTML page per report date, plus the
// date index used for client-side navigation.
package page

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
	"tariff_digest/internal/infra/source"
)

const (
	datesFile = "dates.json"
	indexFile = "index.html"
	dirPerm   = 0o755
	filePerm  = 0o644
)

var _ report.Renderer = (*Renderer)(nil)

// Renderer fetches a window's items and writes the page for a report date.
type Renderer struct {
	fetcher   source.Fetcher
	outputDir string
	title     string
	logger    *logrus.Entry
}

func NewRenderer(fetcher source.Fetcher, outputDir, title string, logger *logrus.Entry) *Renderer {
	return &Renderer{
		fetcher:   fetcher,
		outputDir: outputDir,
		title:     title,
		logger:    logger.WithField("component", "page"),
	}
}

type pageData struct {
	Title  string
	Date   string
	Zone   string
	Window report.Window
	Items  []source.Item
}

// Render publishes <date>.html, then refreshes dates.json and index.html.
// Rebuilding a date overwrites its page in place.
func (r *Renderer) Render(ctx context.Context, date report.Date, window report.Window) (report.RenderResult, error) {
	items, err := r.fetcher.Fetch(ctx, window)
	if err != nil {
		if !errors.Is(err, report.ErrFetch) {
			err = fmt.Errorf("%w: %v", report.ErrFetch, err)
		}
		return report.RenderResult{}, err
	}

	var buf bytes.Buffer
	data := pageData{
		Title:  r.title,
		Date:   date.String(),
		Zone:   window.End.Location().String(),
		Window: window,
		Items:  items,
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return report.RenderResult{}, fmt.Errorf("%w: executing template for %s: %v", report.ErrRender, date, err)
	}

	if err := os.MkdirAll(r.outputDir, dirPerm); err != nil {
		return report.RenderResult{}, fmt.Errorf("%w: creating output dir: %v", report.ErrRender, err)
	}
	pagePath := filepath.Join(r.outputDir, date.String()+".html")
	if err := writeAtomic(pagePath, buf.Bytes()); err != nil {
		return report.RenderResult{}, fmt.Errorf("%w: writing %s: %v", report.ErrRender, pagePath, err)
	}

	dates, err := r.addToIndex(date)
	if err != nil {
		return report.RenderResult{}, fmt.Errorf("%w: updating date index: %v", report.ErrRender, err)
	}
	if dates[len(dates)-1] == date.String() {
		if err := writeAtomic(filepath.Join(r.outputDir, indexFile), buf.Bytes()); err != nil {
			return report.RenderResult{}, fmt.Errorf("%w: writing %s: %v", report.ErrRender, indexFile, err)
		}
	}

	fp := Fingerprint(items)
	r.logger.WithFields(logrus.Fields{
		"report_date": date.String(),
		"items":       len(items),
		"path":        pagePath,
	}).Debug("Page written")

	return report.RenderResult{Fingerprint: fp, Artifact: pagePath}, nil
}

// PublishedDates reads the date index.
func (r *Renderer) PublishedDates() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(r.outputDir, datesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, fmt.Errorf("corrupt %s: %w", datesFile, err)
	}
	return dates, nil
}

func (r *Renderer) addToIndex(date report.Date) ([]string, error) {
	dates, err := r.PublishedDates()
	if err != nil {
		return nil, err
	}
	i := sort.SearchStrings(dates, date.String())
	if i == len(dates) || dates[i] != date.String() {
		dates = append(dates, "")
		copy(dates[i+1:], dates[i:])
		dates[i] = date.String()
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return nil, err
	}
	return dates, writeAtomic(filepath.Join(r.outputDir, datesFile), data)
}

// Fingerprint is the item count plus a short hash of the sorted item URLs.
func Fingerprint(items []source.Item) report.Fingerprint {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.URL)
	}
	sort.Strings(urls)
	sum := sha256.Sum256([]byte(strings.Join(urls, "\n")))
	return report.Fingerprint{Value: hex.EncodeToString(sum[:8]), ItemCount: len(items)}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
