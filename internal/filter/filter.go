// Package filter decides topical relevance of feed entries and assigns
// category labels. Matching is case-insensitive substring containment.
package filter

import (
	"strings"

	"modelwire/internal/catalog"
	"modelwire/internal/model"
)

// Filter accepts or rejects entries by include and exclude term lists.
// Exclude terms take precedence.
type Filter struct {
	keywords []string
	exclude  []string
}

// New builds a Filter from the given term lists. Terms are copied and
// lower-cased; empty terms are dropped so they never match everything.
func New(keywords, exclude []string) *Filter {
	return &Filter{keywords: normalizeTerms(keywords), exclude: normalizeTerms(exclude)}
}

// FromCatalog builds a Filter from a catalog's keyword and exclude lists.
func FromCatalog(c catalog.Catalog) *Filter {
	return New(c.Keywords, c.Exclude)
}

// Accept reports whether an entry with the given title and summary is relevant.
func (f *Filter) Accept(title, summary string) bool {
	t, s := normalize(title), normalize(summary)
	if containsAny(t, s, f.exclude) {
		return false
	}
	return containsAny(t, s, f.keywords)
}

// Categorizer assigns labels from an ordered label→terms table.
type Categorizer struct {
	labels []string
	terms  [][]string
}

// NewCategorizer builds a Categorizer; label order is preserved in results.
func NewCategorizer(categories []catalog.Category) *Categorizer {
	c := &Categorizer{}
	for _, cat := range categories {
		c.labels = append(c.labels, cat.Label)
		c.terms = append(c.terms, normalizeTerms(cat.Terms))
	}
	return c
}

// Categorize returns every label with at least one matching term, or
// [general] when nothing matches. Labels are not mutually exclusive.
func (c *Categorizer) Categorize(title, summary string) []string {
	t, s := normalize(title), normalize(summary)
	var out []string
	seen := map[string]struct{}{}
	for i, label := range c.labels {
		if _, dup := seen[label]; dup {
			continue
		}
		if containsAny(t, s, c.terms[i]) {
			out = append(out, label)
			seen[label] = struct{}{}
		}
	}
	if len(out) == 0 {
		return []string{model.GeneralCategory}
	}
	return out
}

// Apply filters candidates and categorizes the accepted ones, keeping order.
func Apply(f *Filter, c *Categorizer, candidates []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(candidates))
	for _, it := range candidates {
		if !f.Accept(it.Title, it.Summary) {
			continue
		}
		it.Categories = c.Categorize(it.Title, it.Summary)
		out = append(out, it)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(s)
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAny(title, summary string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(title, term) || strings.Contains(summary, term) {
			return true
		}
	}
	return false
}
