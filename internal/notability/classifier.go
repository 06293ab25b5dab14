// Package notability decides which items of a day's batch are notable. It
// asks an LLM first and falls back to a deterministic heuristic whenever the
// LLM tier is unavailable or its answer does not validate.
package notability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modelwire/internal/ai"
	"modelwire/internal/catalog"
	"modelwire/internal/model"
)

// LLMReason is used when the LLM includes an item without giving a reason.
const LLMReason = "LLM decision"

// DefaultTimeout bounds the single LLM request of a run.
const DefaultTimeout = 60 * time.Second

// Method names the tier that produced a Result.
type Method string

const (
	MethodNone      Method = "none"
	MethodLLM       Method = "llm"
	MethodHeuristic Method = "heuristic"
)

// Attempt is the outcome of the LLM tier: either validated decisions,
// aligned by position with the batch, or a failure.
type Attempt struct {
	Decisions []Decision
	Failure   error
}

// OK reports whether the attempt produced usable decisions.
func (a Attempt) OK() bool { return a.Failure == nil }

// Result is the classifier output for one batch.
type Result struct {
	Notable []model.NotableItem
	Method  Method
	// Fallback holds the LLM failure that caused the heuristic tier to run.
	Fallback error
}

// Classifier runs the two-tier notability decision.
type Classifier struct {
	llm       ai.Completer
	prompt    *Prompt
	heuristic Heuristic
	timeout   time.Duration
}

// Options configure a Classifier. LLM may be nil.
type Options struct {
	LLM     ai.Completer
	Timeout time.Duration
}

// New builds a Classifier from the catalog's notability rules.
func New(c catalog.Catalog, opts Options) (*Classifier, error) {
	p, err := NewPrompt(c.Notability.Prompt.System, c.Notability.Prompt.User, c.Labels())
	if err != nil {
		return nil, fmt.Errorf("notability prompt: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Classifier{
		llm:       opts.LLM,
		prompt:    p,
		heuristic: NewHeuristic(c.Notability.StrongTerms, c.Notability.FirstParty),
		timeout:   timeout,
	}, nil
}

// Heuristic exposes the fallback scorer.
func (c *Classifier) Heuristic() Heuristic { return c.heuristic }

// Classify returns the notable subset of items. It never fails: LLM
// problems of any kind route the whole batch to the heuristic tier.
func (c *Classifier) Classify(ctx context.Context, items []model.NewsItem) Result {
	if len(items) == 0 {
		return Result{Notable: []model.NotableItem{}, Method: MethodNone}
	}
	att := c.attempt(ctx, items)
	if att.OK() {
		notable := applyDecisions(items, att.Decisions)
		slog.Info("notability: llm tier decided", "items", len(items), "notable", len(notable))
		return Result{Notable: notable, Method: MethodLLM}
	}
	if errors.Is(att.Failure, ErrNotConfigured) {
		slog.Info("notability: llm tier not configured, using heuristic", "items", len(items))
	} else {
		slog.Warn("notability: llm tier failed, using heuristic", "items", len(items), "error", att.Failure)
	}
	notable := c.heuristic.Select(items)
	return Result{Notable: notable, Method: MethodHeuristic, Fallback: att.Failure}
}

func (c *Classifier) attempt(ctx context.Context, items []model.NewsItem) Attempt {
	if c.llm == nil {
		return Attempt{Failure: ErrNotConfigured}
	}
	user, err := c.prompt.User(items)
	if err != nil {
		return Attempt{Failure: fmt.Errorf("render prompt: %w", err)}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	reply, err := c.llm.Complete(ctx, c.prompt.System(), user)
	if err != nil {
		return Attempt{Failure: fmt.Errorf("llm request: %w", err)}
	}
	decisions, err := ParseDecisions(reply, len(items))
	if err != nil {
		return Attempt{Failure: err}
	}
	return Attempt{Decisions: decisions}
}

// applyDecisions pairs decisions with items by index.
func applyDecisions(items []model.NewsItem, decisions []Decision) []model.NotableItem {
	out := make([]model.NotableItem, 0)
	for i, d := range decisions {
		if !d.Include() {
			continue
		}
		it := items[i]
		if s := strings.TrimSpace(d.Summary); s != "" {
			it.Summary = s
		}
		reason := strings.TrimSpace(d.Reason)
		if reason == "" {
			reason = LLMReason
		}
		out = append(out, model.NotableItem{NewsItem: it, NotabilityReason: reason})
	}
	return out
}
