package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modelwire/internal/model"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "modelwire"

// RedisStore keeps history records in Redis: one JSON string per date plus
// a sorted set of dates scored by their UTC midnight.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

var _ HistoryStore = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

// WithClock overrides the clock used for generated_at.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s2 := *s
	s2.now = now
	return &s2
}

func (s *RedisStore) recordKey(date string) string {
	return fmt.Sprintf("%s:history:%s", s.prefix, date)
}

func (s *RedisStore) datesKey() string {
	return fmt.Sprintf("%s:history:dates", s.prefix)
}

// Write stores the record and indexes its date in one MULTI/EXEC. Records
// never expire.
func (s *RedisStore) Write(ctx context.Context, date string, items []model.NewsItem, notable []model.NotableItem) (model.HistoryRecord, error) {
	day, err := ParseDate(date)
	if err != nil {
		return model.HistoryRecord{}, err
	}
	rec := newRecord(date, items, notable, s.now())
	b, err := json.Marshal(rec)
	if err != nil {
		return model.HistoryRecord{}, err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(date), b, 0)
		pipe.ZAdd(ctx, s.datesKey(), redis.Z{Score: float64(day.Unix()), Member: date})
		return nil
	})
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("write history %s: %w", date, err)
	}
	return rec, nil
}

func (s *RedisStore) Read(ctx context.Context, date string) (model.HistoryRecord, error) {
	if _, err := ParseDate(date); err != nil {
		return model.HistoryRecord{}, err
	}
	b, err := s.rdb.Get(ctx, s.recordKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.HistoryRecord{}, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if err != nil {
		return model.HistoryRecord{}, fmt.Errorf("read history %s: %w", date, err)
	}
	var rec model.HistoryRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return model.HistoryRecord{}, fmt.Errorf("decode history %s: %w", date, err)
	}
	return rec, nil
}

func (s *RedisStore) ReadRecent(ctx context.Context, n int) ([]model.HistoryRecord, error) {
	if n <= 0 {
		return []model.HistoryRecord{}, nil
	}
	dates, err := s.rdb.ZRevRange(ctx, s.datesKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]model.HistoryRecord, 0, n)
	for _, d := range dates {
		if len(out) >= n {
			break
		}
		rec, err := s.Read(ctx, d)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("history: skipping unreadable record", "date", d, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
