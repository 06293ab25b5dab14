package storage

import (
	"fmt"
	"time"

	"modelwire/internal/model"
)

// WriteNewsPayload writes the renderer-facing {generated_at, items} record.
func WriteNewsPayload(path string, items []model.NewsItem, generatedAt time.Time) error {
	return writeJSONAtomic(path, model.NewsPayload{
		GeneratedAt: generatedAt.UTC(),
		Items:       model.NonNilItems(items),
	})
}

// ReadNewsPayload loads a news payload written by WriteNewsPayload.
func ReadNewsPayload(path string) (model.NewsPayload, error) {
	var p model.NewsPayload
	if err := readJSON(path, &p); err != nil {
		return model.NewsPayload{}, fmt.Errorf("read news payload %s: %w", path, err)
	}
	p.Items = model.NonNilItems(p.Items)
	return p, nil
}

// WriteNotablePayload writes the renderer-facing {items} record.
func WriteNotablePayload(path string, notable []model.NotableItem) error {
	return writeJSONAtomic(path, model.NotablePayload{Items: model.NonNilNotable(notable)})
}

// ReadNotablePayload loads a notable payload written by WriteNotablePayload.
func ReadNotablePayload(path string) (model.NotablePayload, error) {
	var p model.NotablePayload
	if err := readJSON(path, &p); err != nil {
		return model.NotablePayload{}, fmt.Errorf("read notable payload %s: %w", path, err)
	}
	p.Items = model.NonNilNotable(p.Items)
	return p, nil
}
