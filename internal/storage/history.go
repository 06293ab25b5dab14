package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modelwire/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for a date.
	ErrNotFound = errors.New("history: record not found")
	// ErrInvalidDate is returned for keys that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("history: invalid date")
)

// HistoryStore persists one record per UTC calendar date. Write fully
// replaces any existing record for the date.
type HistoryStore interface {
	Write(ctx context.Context, date string, items []model.NewsItem, notable []model.NotableItem) (model.HistoryRecord, error)
	Read(ctx context.Context, date string) (model.HistoryRecord, error)
	// ReadRecent returns up to n records, newest date first. Records that
	// fail to decode are skipped.
	ReadRecent(ctx context.Context, n int) ([]model.HistoryRecord, error)
}

// ParseDate validates a history key and returns its UTC midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, date)
	}
	return t, nil
}

func newRecord(date string, items []model.NewsItem, notable []model.NotableItem, now time.Time) model.HistoryRecord {
	return model.HistoryRecord{
		Date:        date,
		Items:       model.NonNilItems(items),
		Notable:     model.NonNilNotable(notable),
		GeneratedAt: now.UTC(),
	}
}
