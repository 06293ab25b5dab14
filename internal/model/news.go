package model

import "time"

// GeneralCategory is assigned when no configured label matches an item.
const GeneralCategory = "general"

// DateLayout is the canonical history key format (UTC calendar date).
const DateLayout = "2006-01-02"

// NewsItem is one ingested feed entry that passed the relevance filter.
// Link is the identity key within a run.
type NewsItem struct {
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Summary    string    `json:"summary"`
	Published  time.Time `json:"published"`
	Categories []string  `json:"categories"`
}

// NotableItem is a NewsItem promoted by the notability classifier.
type NotableItem struct {
	NewsItem
	NotabilityReason string `json:"notability_reason"`
}

// HistoryRecord is the archived snapshot of one UTC calendar day.
type HistoryRecord struct {
	Date        string        `json:"date"`
	Items       []NewsItem    `json:"items"`
	Notable     []NotableItem `json:"notable"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewsPayload is the raw feed record consumed by the site renderer.
type NewsPayload struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Items       []NewsItem `json:"items"`
}

// NotablePayload is the notable subset consumed by the site renderer.
type NotablePayload struct {
	Items []NotableItem `json:"items"`
}

// NonNilItems returns items, or an empty slice so JSON encodes [] rather than null.
func NonNilItems(items []NewsItem) []NewsItem {
	if items == nil {
		return []NewsItem{}
	}
	return items
}

// NonNilNotable is NonNilItems for notable items.
func NonNilNotable(items []NotableItem) []NotableItem {
	if items == nil {
		return []NotableItem{}
	}
	return items
}

// DayKey formats t as a history key in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
