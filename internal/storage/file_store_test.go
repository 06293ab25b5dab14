package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelwire/internal/model"
)

var clock = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return clock }

func sampleItems() ([]model.NewsItem, []model.NotableItem) {
	items := []model.NewsItem{
		{Source: "OpenAI Blog", Title: "New SOTA object detection model", Link: "https://a", Summary: "a", Published: clock, Categories: []string{"detection"}},
		{Source: "Meta AI Blog", Title: "SAM 3", Link: "https://b", Summary: "b", Published: clock.Add(-time.Hour), Categories: []string{"segmentation"}},
	}
	notable := []model.NotableItem{{NewsItem: items[0], NotabilityReason: "Heuristic strong-terms/source match"}}
	return items, notable
}

func TestFileStoreWriteIsIdempotent(t *testing.T) {
	s := NewFileStore(t.TempDir()).WithClock(fixedClock)
	items, notable := sampleItems()
	ctx := context.Background()

	_, err := s.Write(ctx, "2025-03-10", items, notable)
	require.NoError(t, err)
	first, err := os.ReadFile(s.Path("2025-03-10"))
	require.NoError(t, err)

	_, err = s.Write(ctx, "2025-03-10", items, notable)
	require.NoError(t, err)
	second, err := os.ReadFile(s.Path("2025-03-10"))
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestFileStoreWriteReplacesWithoutMerging(t *testing.T) {
	s := NewFileStore(t.TempDir()).WithClock(fixedClock)
	items, notable := sampleItems()
	ctx := context.Background()

	_, err := s.Write(ctx, "2025-03-10", items, notable)
	require.NoError(t, err)
	_, err = s.Write(ctx, "2025-03-10", items[1:], nil)
	require.NoError(t, err)

	rec, err := s.Read(ctx, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)
	require.Equal(t, "https://b", rec.Items[0].Link)
	require.NotNil(t, rec.Notable)
	require.Empty(t, rec.Notable)
	require.Equal(t, clock, rec.GeneratedAt)
}

func TestFileStoreEmptyCollectionsEncodeAsArrays(t *testing.T) {
	s := NewFileStore(t.TempDir()).WithClock(fixedClock)
	_, err := s.Write(context.Background(), "2025-03-10", nil, nil)
	require.NoError(t, err)

	b, err := os.ReadFile(s.Path("2025-03-10"))
	require.NoError(t, err)
	require.Contains(t, string(b), `"items": []`)
	require.Contains(t, string(b), `"notable": []`)
}

func TestFileStoreRejectsInvalidDate(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, err := s.Write(context.Background(), "10-03-2025", nil, nil)
	require.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.Read(context.Background(), "../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestFileStoreReadMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, err := s.Read(context.Background(), "2025-01-01")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreReadRecent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir).WithClock(fixedClock)
	ctx := context.Background()
	items, notable := sampleItems()

	for _, d := range []string{"2025-03-07", "2025-03-09", "2025-03-08", "2025-03-10"} {
		_, err := s.Write(ctx, d, items, notable)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025-03-09.json"), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	recs, err := s.ReadRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "2025-03-10", recs[0].Date)
	require.Equal(t, "2025-03-08", recs[1].Date)

	all, err := s.ReadRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "2025-03-07", all[2].Date)
}

func TestFileStoreReadRecentMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	recs, err := s.ReadRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	_, err := s.Write(context.Background(), "2025-03-10", nil, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "2025-03-10.json", entries[0].Name())
}

func TestPayloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	items, notable := sampleItems()

	newsPath := filepath.Join(dir, "data", "news.json")
	require.NoError(t, WriteNewsPayload(newsPath, items, clock))
	news, err := ReadNewsPayload(newsPath)
	require.NoError(t, err)
	require.Equal(t, clock, news.GeneratedAt)
	require.Equal(t, items, news.Items)

	notablePath := filepath.Join(dir, "data", "notable.json")
	require.NoError(t, WriteNotablePayload(notablePath, notable))
	got, err := ReadNotablePayload(notablePath)
	require.NoError(t, err)
	require.Equal(t, notable, got.Items)

	raw, err := os.ReadFile(notablePath)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"notability_reason": "Heuristic strong-terms/source match"`)
	require.Contains(t, string(raw), `"link": "https://a"`)
}
