// Package feed retrieves RSS/Atom feeds and normalizes their entries into
// candidate news items.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"modelwire/internal/catalog"
	"modelwire/internal/model"
)

// DefaultWindow is used when no window is configured.
const DefaultWindow = 24 * time.Hour

const (
	defaultConcurrency = 4
	defaultTimeout     = 20 * time.Second
	defaultUserAgent   = "modelwire/1.0 (+feed fetcher)"
)

// Options configure a Fetcher. Zero values fall back to defaults.
type Options struct {
	Client      *http.Client
	UserAgent   string
	Concurrency int
	Timeout     time.Duration // per feed
	Now         func() time.Time
}

// Fetcher pulls entries from a set of feeds. Feeds are independent: one
// failing feed never affects the others.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:      opts.Client,
		userAgent:   strings.TrimSpace(opts.UserAgent),
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		now:         opts.Now,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.concurrency <= 0 {
		f.concurrency = defaultConcurrency
	}
	if f.timeout <= 0 {
		f.timeout = defaultTimeout
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// SourceError records a feed that was skipped.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string { return fmt.Sprintf("feed %s: %v", e.Source, e.Err) }
func (e SourceError) Unwrap() error { return e.Err }

// Result is the outcome of one fetch run.
type Result struct {
	// Items are deduplicated by link and ordered newest first.
	Items   []model.NewsItem
	Fetched int
	Skipped int
	Errors  []SourceError
}

// Fetch retrieves every fetchable source and returns the entries published
// within window of now. A non-positive window means DefaultWindow.
func (f *Fetcher) Fetch(ctx context.Context, sources []catalog.Source, window time.Duration) Result {
	if window <= 0 {
		window = DefaultWindow
	}
	now := f.now().UTC()

	type result struct {
		items []model.NewsItem
		err   error
		used  bool
	}
	out := make([]result, len(sources))
	sem := make(chan struct{}, f.concurrency)
	done := make(chan struct{}, len(sources))
	launched := 0
	for i, src := range sources {
		if !src.Fetchable() {
			slog.Warn("feed: unsupported source type, skipping", "source", src.Name, "type", src.Type)
			continue
		}
		i, src := i, src
		launched++
		sem <- struct{}{}
		go func() {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			items, err := f.fetchOne(ctx, src, now)
			out[i] = result{items: items, err: err, used: true}
		}()
	}
	for j := 0; j < launched; j++ {
		<-done
	}

	var res Result
	var candidates []model.NewsItem
	for i, r := range out {
		if !r.used {
			continue
		}
		if r.err != nil {
			slog.Error("feed: fetch failed, skipping source", "source", sources[i].Name, "url", sources[i].URL, "error", r.err)
			res.Skipped++
			res.Errors = append(res.Errors, SourceError{Source: sources[i].Name, Err: r.err})
			continue
		}
		res.Fetched++
		candidates = append(candidates, r.items...)
	}
	res.Items = Dedupe(WithinWindow(candidates, now, window))
	SortNewestFirst(res.Items)
	slog.Info("feed: fetch completed", "fetched", res.Fetched, "skipped", res.Skipped, "candidates", len(res.Items))
	return res
}

func (f *Fetcher) fetchOne(ctx context.Context, src catalog.Source, now time.Time) ([]model.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = f.client
	fp.UserAgent = f.userAgent
	parsed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.NewsItem, 0, len(parsed.Items))
	for _, e := range parsed.Items {
		if e == nil {
			continue
		}
		items = append(items, convertEntry(src.Name, e, now))
	}
	return items, nil
}

func convertEntry(source string, e *gofeed.Item, now time.Time) model.NewsItem {
	link := strings.TrimSpace(e.Link)
	if link == "" {
		link = strings.TrimSpace(e.GUID)
	}
	summary := e.Description
	if strings.TrimSpace(summary) == "" {
		summary = e.Content
	}
	return model.NewsItem{
		Source:    source,
		Title:     strings.TrimSpace(e.Title),
		Link:      link,
		Summary:   StripMarkup(summary),
		Published: ResolvePublished(e, now),
	}
}

// ResolvePublished picks the entry timestamp: published, then updated,
// then now. It never fails.
func ResolvePublished(e *gofeed.Item, now time.Time) time.Time {
	if t, ok := pickTime(e.PublishedParsed, e.Published); ok {
		return t
	}
	if t, ok := pickTime(e.UpdatedParsed, e.Updated); ok {
		return t
	}
	return now.UTC()
}

func pickTime(parsed *time.Time, raw string) (time.Time, bool) {
	if parsed != nil && !parsed.IsZero() {
		return parsed.UTC(), true
	}
	return ParseTimestamp(raw)
}

// ParseTimestamp parses a free-form feed date.
func ParseTimestamp(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

// WithinWindow keeps items with now - published <= window (inclusive).
func WithinWindow(items []model.NewsItem, now time.Time, window time.Duration) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if now.Sub(it.Published) > window {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Dedupe drops items whose link was already seen; the first occurrence wins.
// Items without a link have no identity and are all kept.
func Dedupe(items []model.NewsItem) []model.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if it.Link != "" {
			if _, ok := seen[it.Link]; ok {
				continue
			}
			seen[it.Link] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// SortNewestFirst orders items by published time, descending. Ties keep
// their input order.
func SortNewestFirst(items []model.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
}
