package notability

import (
	"strings"

	"modelwire/internal/model"
)

// HeuristicReason is the notability reason attached by the fallback tier.
const HeuristicReason = "Heuristic strong-terms/source match"

// Threshold is the minimum heuristic score for an item to be notable.
const Threshold = 2

// Heuristic scores items by strong-term hits plus a first-party source bonus.
type Heuristic struct {
	strongTerms []string
	firstParty  []string
}

// NewHeuristic builds the deterministic fallback scorer.
func NewHeuristic(strongTerms, firstParty []string) Heuristic {
	return Heuristic{strongTerms: lowerAll(strongTerms), firstParty: lowerAll(firstParty)}
}

// Score counts the strong terms present in title+summary and adds 1
// when the source belongs to a first-party publisher.
func (h Heuristic) Score(it model.NewsItem) int {
	text := strings.ToLower(it.Title + " " + it.Summary)
	score := 0
	for _, term := range h.strongTerms {
		if strings.Contains(text, term) {
			score++
		}
	}
	if h.isFirstParty(it.Source) {
		score++
	}
	return score
}

func (h Heuristic) isFirstParty(source string) bool {
	s := strings.ToLower(source)
	for _, name := range h.firstParty {
		if strings.Contains(s, name) {
			return true
		}
	}
	return false
}

// Select returns the items scoring at or above Threshold, in input order.
func (h Heuristic) Select(items []model.NewsItem) []model.NotableItem {
	out := make([]model.NotableItem, 0)
	for _, it := range items {
		if h.Score(it) < Threshold {
			continue
		}
		out = append(out, model.NotableItem{NewsItem: it, NotabilityReason: HeuristicReason})
	}
	return out
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
