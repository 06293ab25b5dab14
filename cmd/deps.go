package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"modelwire/internal/ai"
	"modelwire/internal/catalog"
	"modelwire/internal/config"
	"modelwire/internal/feed"
	"modelwire/internal/notability"
	"modelwire/internal/pipeline"
	"modelwire/internal/redisclient"
	"modelwire/internal/storage"

	"github.com/spf13/cobra"
)

// newClassifier builds the notability classifier. The LLM tier is enabled
// only when an API key is configured.
func newClassifier(cfg config.Config, cat catalog.Catalog) (*notability.Classifier, error) {
	timeout, err := cfg.OpenAITimeout()
	if err != nil {
		return nil, err
	}
	opts := notability.Options{Timeout: timeout}
	if c := ai.NewOpenAI(ai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
	}); c != nil {
		opts.LLM = c
		slog.Debug("notability: llm tier enabled", "model", c.Model())
	} else {
		slog.Info("notability: no OPENAI_API_KEY, heuristic tier only")
	}
	return notability.New(cat, opts)
}

// newHistoryStore opens the configured history backend. The returned close
// func is never nil.
func newHistoryStore(cfg config.Config) (storage.HistoryStore, func(), error) {
	switch cfg.History.Backend {
	case "redis":
		rdb := redisclient.New(cfg.Redis)
		return storage.NewRedisStore(rdb, cfg.Redis.Prefix), func() { _ = rdb.Close() }, nil
	case "file":
		return storage.NewFileStore(cfg.History.Dir), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// newPipeline wires a pipeline from configuration. When withHistory is
// false the pipeline can only Collect and Classify.
func newPipeline(cfg config.Config, withHistory bool) (*pipeline.Pipeline, func(), error) {
	cat, err := catalog.Load(cfg.Pipeline.Catalog)
	if err != nil {
		return nil, nil, err
	}
	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, nil, err
	}
	cls, err := newClassifier(cfg, cat)
	if err != nil {
		return nil, nil, err
	}
	deps := pipeline.Deps{
		Catalog: cat,
		Fetcher: feed.NewFetcher(feed.Options{
			UserAgent:   cfg.Pipeline.UserAgent,
			Concurrency: cfg.Pipeline.Concurrency,
			Timeout:     fetchTimeout,
		}),
		Classifier: cls,
	}
	closeFn := func() {}
	if withHistory {
		hist, c, err := newHistoryStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		deps.History = hist
		closeFn = c
	}
	return pipeline.New(deps), closeFn, nil
}

// addWindowFlags registers --hours and --days.
func addWindowFlags(c *cobra.Command) {
	c.Flags().Int("hours", 0, "fetch window in hours (default: pipeline.window_hours)")
	c.Flags().Int("days", 0, "fetch window in days; overrides --hours")
}

// windowFromFlags resolves the fetch window; --days wins over --hours.
func windowFromFlags(c *cobra.Command, fallback time.Duration) time.Duration {
	days, _ := c.Flags().GetInt("days")
	hours, _ := c.Flags().GetInt("hours")
	switch {
	case days > 0:
		return time.Duration(days) * 24 * time.Hour
	case hours > 0:
		return time.Duration(hours) * time.Hour
	default:
		return fallback
	}
}
