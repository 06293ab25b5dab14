package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"` // key namespace for history records
}

// OpenAIConfig controls the LLM tier of the notability classifier.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"` // duration string, e.g., "60s"
	Temperature float32 `mapstructure:"temperature"`
}

// PipelineConfig controls fetching.
type PipelineConfig struct {
	Catalog      string `mapstructure:"catalog"`      // path to catalog YAML; empty uses the embedded one
	WindowHours  int    `mapstructure:"window_hours"` // default 24
	Concurrency  int    `mapstructure:"concurrency"`
	FetchTimeout string `mapstructure:"fetch_timeout"` // per feed, e.g., "20s"
	UserAgent    string `mapstructure:"user_agent"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"` // file or redis
	Dir     string `mapstructure:"dir"`
}

// OutputConfig locates the renderer-facing payload files.
type OutputConfig struct {
	NewsFile    string `mapstructure:"news_file"`
	NotableFile string `mapstructure:"notable_file"`
}

// ScheduleConfig controls the serve command.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	Timezone   string `mapstructure:"timezone"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	History  HistoryConfig  `mapstructure:"history"`
	Output   OutputConfig   `mapstructure:"output"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "modelwire"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "60s"
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.2
	}
	if c.Pipeline.WindowHours <= 0 {
		c.Pipeline.WindowHours = 24
	}
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = 4
	}
	if c.Pipeline.FetchTimeout == "" {
		c.Pipeline.FetchTimeout = "20s"
	}
	if c.History.Backend == "" {
		c.History.Backend = "file"
	}
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
	if c.History.Dir == "" {
		c.History.Dir = "data/history"
	}
	if c.Output.NewsFile == "" {
		c.Output.NewsFile = "data/news.json"
	}
	if c.Output.NotableFile == "" {
		c.Output.NotableFile = "data/notable.json"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 6 * * *"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.History.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("history.backend must be file or redis, got %q", c.History.Backend)
	}
	if _, err := c.OpenAITimeout(); err != nil {
		return err
	}
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	return nil
}

// OpenAITimeout parses openai.timeout.
func (c Config) OpenAITimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.OpenAI.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid openai.timeout %q: %w", c.OpenAI.Timeout, err)
	}
	return d, nil
}

// FetchTimeout parses pipeline.fetch_timeout.
func (c Config) FetchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Pipeline.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid pipeline.fetch_timeout %q: %w", c.Pipeline.FetchTimeout, err)
	}
	return d, nil
}

// Window returns the default fetch window.
func (c Config) Window() time.Duration {
	return time.Duration(c.Pipeline.WindowHours) * time.Hour
}
