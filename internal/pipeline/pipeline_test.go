package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelwire/internal/catalog"
	"modelwire/internal/feed"
	"modelwire/internal/model"
	"modelwire/internal/notability"
	"modelwire/internal/storage"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func rss(title, link string, pub time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>`+
		`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item></channel></rss>`,
		title, link, pub.Format(time.RFC1123Z))
}

func endToEndCatalog(t *testing.T, base string) catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	cat.Sources = []catalog.Source{
		{Name: "OpenAI Blog", Type: "rss", URL: base + "/openai.xml"},
		{Name: "Random Blog", Type: "rss", URL: base + "/random.xml"},
	}
	return cat
}

func newEndToEnd(t *testing.T, llm *fakeLLM) (*Pipeline, *storage.FileStore) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openai.xml":
			_, _ = w.Write([]byte(rss("New SOTA object detection model", "https://openai.example/a", now)))
		case "/random.xml":
			_, _ = w.Write([]byte(rss("Weekly AI newsletter", "https://random.example/b", now)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cat := endToEndCatalog(t, srv.URL)
	opts := notability.Options{}
	if llm != nil {
		opts.LLM = llm
	}
	cls, err := notability.New(cat, opts)
	require.NoError(t, err)
	hist := storage.NewFileStore(t.TempDir()).WithClock(clock)
	p := New(Deps{
		Catalog:    cat,
		Fetcher:    feed.NewFetcher(feed.Options{Client: srv.Client(), Now: clock}),
		Classifier: cls,
		History:    hist,
		Now:        clock,
	})
	return p, hist
}

type fakeLLM struct{ reply string }

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	return f.reply, nil
}

func TestRunEndToEnd(t *testing.T) {
	p, hist := newEndToEnd(t, nil)

	res, err := p.Run(context.Background(), "", 0)
	require.NoError(t, err)
	require.Equal(t, "2025-03-10", res.Date)
	require.Equal(t, 2, res.Candidates)
	require.Equal(t, 2, res.Fetched)

	require.Len(t, res.Items, 1)
	a := res.Items[0]
	require.Equal(t, "New SOTA object detection model", a.Title)
	require.Equal(t, "OpenAI Blog", a.Source)
	require.Equal(t, []string{"detection"}, a.Categories)

	require.Equal(t, notability.MethodHeuristic, res.Method)
	require.Len(t, res.Notable, 1)
	require.Equal(t, a.Link, res.Notable[0].Link)
	require.Equal(t, notability.HeuristicReason, res.Notable[0].NotabilityReason)

	rec, err := hist.Read(context.Background(), "2025-03-10")
	require.NoError(t, err)
	require.Equal(t, res.Items, rec.Items)
	require.Equal(t, res.Notable, rec.Notable)
}

func TestRunMalformedLLMMatchesHeuristic(t *testing.T) {
	plain, _ := newEndToEnd(t, nil)
	want, err := plain.Run(context.Background(), "2025-03-10", 0)
	require.NoError(t, err)

	withLLM, _ := newEndToEnd(t, &fakeLLM{reply: "Sure! Here are my thoughts."})
	got, err := withLLM.Run(context.Background(), "2025-03-10", 0)
	require.NoError(t, err)

	require.Equal(t, notability.MethodHeuristic, got.Method)
	require.Error(t, got.Fallback)
	require.Equal(t, want.Notable, got.Notable)
}

func TestRunUsesLLMDecisions(t *testing.T) {
	p, _ := newEndToEnd(t, &fakeLLM{reply: `[{"decision":"exclude","reason":"incremental","summary":""}]`})
	res, err := p.Run(context.Background(), "2025-03-10", 0)
	require.NoError(t, err)
	require.Equal(t, notability.MethodLLM, res.Method)
	require.Empty(t, res.Notable)
	require.Len(t, res.Record.Items, 1)
}

type stubFetcher struct{ res feed.Result }

func (s stubFetcher) Fetch(ctx context.Context, sources []catalog.Source, window time.Duration) feed.Result {
	return s.res
}

type failingStore struct{ storage.HistoryStore }

func (failingStore) Write(ctx context.Context, date string, items []model.NewsItem, notable []model.NotableItem) (model.HistoryRecord, error) {
	return model.HistoryRecord{}, errors.New("disk full")
}

func stubPipeline(t *testing.T, res feed.Result, hist storage.HistoryStore) *Pipeline {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	cls, err := notability.New(cat, notability.Options{})
	require.NoError(t, err)
	return New(Deps{Catalog: cat, Fetcher: stubFetcher{res: res}, Classifier: cls, History: hist, Now: clock})
}

func TestRunAllFeedsFailed(t *testing.T) {
	res := feed.Result{Skipped: 2, Errors: []feed.SourceError{
		{Source: "A", Err: errors.New("timeout")},
		{Source: "B", Err: errors.New("404")},
	}}
	p := stubPipeline(t, res, storage.NewFileStore(t.TempDir()))
	_, err := p.Run(context.Background(), "2025-03-10", 0)
	require.ErrorIs(t, err, ErrAllFeedsFailed)
	require.Contains(t, err.Error(), "feed B")
}

func TestRunQuietDayWritesEmptyRecord(t *testing.T) {
	hist := storage.NewFileStore(t.TempDir()).WithClock(clock)
	p := stubPipeline(t, feed.Result{Fetched: 3, Skipped: 1}, hist)

	res, err := p.Run(context.Background(), "2025-03-10", 0)
	require.NoError(t, err)
	require.Equal(t, notability.MethodNone, res.Method)
	rec, err := hist.Read(context.Background(), "2025-03-10")
	require.NoError(t, err)
	require.Empty(t, rec.Items)
	require.Empty(t, rec.Notable)
}

func TestRunArchiveFailureIsFatal(t *testing.T) {
	p := stubPipeline(t, feed.Result{Fetched: 1}, failingStore{})
	_, err := p.Run(context.Background(), "2025-03-10", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestRunRejectsBadDate(t *testing.T) {
	p := stubPipeline(t, feed.Result{Fetched: 1}, storage.NewFileStore(t.TempDir()))
	_, err := p.Run(context.Background(), "March 10", 0)
	require.ErrorIs(t, err, storage.ErrInvalidDate)
}

func TestCollectFiltersAndCategorizes(t *testing.T) {
	p := stubPipeline(t, feed.Result{Fetched: 1, Items: []model.NewsItem{
		{Title: "Open source LLM release", Link: "1", Published: now},
		{Title: "We are hiring ML engineers", Link: "2", Published: now},
		{Title: "Gardening tips", Link: "3", Published: now},
		{Title: "Mask R-CNN benchmark", Link: "4", Published: now.Add(-time.Hour)},
	}}, nil)

	col, err := p.Collect(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 4, col.Candidates)
	require.Len(t, col.Items, 2)
	require.Equal(t, []string{"llm"}, col.Items[0].Categories)
	require.Equal(t, []string{"detection", "segmentation"}, col.Items[1].Categories)
	require.Equal(t, now, col.GeneratedAt)
}
