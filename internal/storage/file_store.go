package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modelwire/internal/model"
)

// FileStore keeps history as <dir>/<YYYY-MM-DD>.json.
type FileStore struct {
	dir string
	now func() time.Time
}

var _ HistoryStore = (*FileStore)(nil)

// NewFileStore creates a file-backed history store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// WithClock overrides the clock used for generated_at.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s2 := *s
	s2.now = now
	return &s2
}

// Path returns the file path for a date key.
func (s *FileStore) Path(date string) string {
	return filepath.Join(s.dir, date+".json")
}

func (s *FileStore) Write(ctx context.Context, date string, items []model.NewsItem, notable []model.NotableItem) (model.HistoryRecord, error) {
	if _, err := ParseDate(date); err != nil {
		return model.HistoryRecord{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.HistoryRecord{}, err
	}
	rec := newRecord(date, items, notable, s.now())
	if err := writeJSONAtomic(s.Path(date), rec); err != nil {
		return model.HistoryRecord{}, fmt.Errorf("write history %s: %w", date, err)
	}
	return rec, nil
}

func (s *FileStore) Read(ctx context.Context, date string) (model.HistoryRecord, error) {
	if _, err := ParseDate(date); err != nil {
		return model.HistoryRecord{}, err
	}
	var rec model.HistoryRecord
	if err := readJSON(s.Path(date), &rec); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.HistoryRecord{}, fmt.Errorf("%w: %s", ErrNotFound, date)
		}
		return model.HistoryRecord{}, fmt.Errorf("read history %s: %w", date, err)
	}
	return rec, nil
}

func (s *FileStore) ReadRecent(ctx context.Context, n int) ([]model.HistoryRecord, error) {
	if n <= 0 {
		return []model.HistoryRecord{}, nil
	}
	dates, err := s.dates()
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryRecord, 0, n)
	for _, d := range dates {
		if len(out) >= n {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.Read(ctx, d)
		if err != nil {
			slog.Warn("history: skipping unreadable record", "date", d, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// dates lists valid date keys present on disk, newest first.
func (s *FileStore) dates() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list history: %w", err)
	}
	var dates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		d := strings.TrimSuffix(e.Name(), ".json")
		if _, err := ParseDate(d); err != nil {
			continue
		}
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts lexically in date order
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
