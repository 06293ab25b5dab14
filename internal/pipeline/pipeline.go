// Package pipeline wires fetching, filtering, categorization, notability
// classification and history archival into one run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modelwire/internal/catalog"
	"modelwire/internal/feed"
	"modelwire/internal/filter"
	"modelwire/internal/model"
	"modelwire/internal/notability"
	"modelwire/internal/storage"
)

// ErrAllFeedsFailed is returned when no configured feed could be fetched.
var ErrAllFeedsFailed = errors.New("pipeline: every feed failed")

// FeedFetcher is satisfied by *feed.Fetcher.
type FeedFetcher interface {
	Fetch(ctx context.Context, sources []catalog.Source, window time.Duration) feed.Result
}

// Classifier is satisfied by *notability.Classifier.
type Classifier interface {
	Classify(ctx context.Context, items []model.NewsItem) notability.Result
}

// Deps are the collaborators of a Pipeline. History may be nil for
// collect-only use.
type Deps struct {
	Catalog    catalog.Catalog
	Fetcher    FeedFetcher
	Classifier Classifier
	History    storage.HistoryStore
	Now        func() time.Time
}

// Pipeline runs the daily ingestion.
type Pipeline struct {
	sources     []catalog.Source
	fetcher     FeedFetcher
	filter      *filter.Filter
	categorizer *filter.Categorizer
	classifier  Classifier
	history     storage.HistoryStore
	now         func() time.Time
}

// New constructs a Pipeline.
func New(deps Deps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		sources:     deps.Catalog.Sources,
		fetcher:     deps.Fetcher,
		filter:      filter.FromCatalog(deps.Catalog),
		categorizer: filter.NewCategorizer(deps.Catalog.Categories),
		classifier:  deps.Classifier,
		history:     deps.History,
		now:         now,
	}
}

// Collection is the filtered, categorized item set of a run.
type Collection struct {
	Items       []model.NewsItem
	Candidates  int
	Fetched     int
	Skipped     int
	GeneratedAt time.Time
}

// Result summarizes a full run.
type Result struct {
	Collection
	Date     string
	Notable  []model.NotableItem
	Method   notability.Method
	Fallback error
	Record   model.HistoryRecord
}

// Collect fetches every source and keeps the relevant, categorized items.
// It fails only when all feeds failed or ctx was cancelled.
func (p *Pipeline) Collect(ctx context.Context, window time.Duration) (Collection, error) {
	res := p.fetcher.Fetch(ctx, p.sources, window)
	if err := ctx.Err(); err != nil {
		return Collection{}, err
	}
	if res.Fetched == 0 && res.Skipped > 0 {
		return Collection{}, fmt.Errorf("%w (%d skipped): %w", ErrAllFeedsFailed, res.Skipped, errors.Join(sourceErrs(res.Errors)...))
	}
	items := filter.Apply(p.filter, p.categorizer, res.Items)
	slog.Info("pipeline: collected items", "candidates", len(res.Items), "kept", len(items), "skipped_feeds", res.Skipped)
	return Collection{
		Items:       items,
		Candidates:  len(res.Items),
		Fetched:     res.Fetched,
		Skipped:     res.Skipped,
		GeneratedAt: p.now().UTC(),
	}, nil
}

// Classify runs the notability classifier over items.
func (p *Pipeline) Classify(ctx context.Context, items []model.NewsItem) notability.Result {
	return p.classifier.Classify(ctx, items)
}

// Run performs collect, classify and archive for date (YYYY-MM-DD; empty
// means today in UTC). A history write failure fails the run.
func (p *Pipeline) Run(ctx context.Context, date string, window time.Duration) (Result, error) {
	if date == "" {
		date = model.DayKey(p.now())
	}
	if _, err := storage.ParseDate(date); err != nil {
		return Result{}, err
	}
	if p.history == nil {
		return Result{}, errors.New("pipeline: no history store configured")
	}
	col, err := p.Collect(ctx, window)
	if err != nil {
		return Result{}, err
	}
	cls := p.Classify(ctx, col.Items)
	rec, err := p.history.Write(ctx, date, col.Items, cls.Notable)
	if err != nil {
		return Result{}, fmt.Errorf("archive %s: %w", date, err)
	}
	slog.Info("pipeline: run completed", "date", date, "items", len(rec.Items), "notable", len(rec.Notable), "method", cls.Method)
	return Result{
		Collection: col,
		Date:       date,
		Notable:    rec.Notable,
		Method:     cls.Method,
		Fallback:   cls.Fallback,
		Record:     rec,
	}, nil
}

func sourceErrs(errs []feed.SourceError) []error {
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		out = append(out, e)
	}
	return out
}
