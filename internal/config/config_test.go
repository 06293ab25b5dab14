package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()

	require.Equal(t, "info", c.App.LogLevel)
	require.Equal(t, "text", c.App.LogFormat)
	require.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
	require.Equal(t, "gpt-4o-mini", c.OpenAI.Model)
	require.Equal(t, 24*time.Hour, c.Window())
	require.Equal(t, "file", c.History.Backend)
	require.Equal(t, "data/history", c.History.Dir)
	require.Equal(t, "data/news.json", c.Output.NewsFile)
	require.Equal(t, "data/notable.json", c.Output.NotableFile)
	require.Equal(t, "0 6 * * *", c.Schedule.Cron)
	require.NoError(t, c.Validate())
}

func TestUnmarshalFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	doc := `
app:
  log_level: debug
openai:
  api_key: sk-test
  timeout: 5s
pipeline:
  window_hours: 48
  catalog: ./catalog.yaml
history:
  backend: Redis
redis:
  addr: redis:6379
  prefix: mw
`
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	c.FillDefaults()

	require.Equal(t, "debug", c.App.LogLevel)
	require.Equal(t, "sk-test", c.OpenAI.APIKey)
	require.Equal(t, 48*time.Hour, c.Window())
	require.Equal(t, "./catalog.yaml", c.Pipeline.Catalog)
	require.Equal(t, "redis", c.History.Backend)
	require.Equal(t, "mw", c.Redis.Prefix)
	d, err := c.OpenAITimeout()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, d)
}

func TestValidate(t *testing.T) {
	var c Config
	c.FillDefaults()
	c.History.Backend = "s3"
	require.Error(t, c.Validate())

	c.History.Backend = "file"
	c.OpenAI.Timeout = "soon"
	require.Error(t, c.Validate())
}
