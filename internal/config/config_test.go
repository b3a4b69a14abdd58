package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
db:
  connection: mongodb://localhost:27017
  database: news_miner
sources:
  guardian:
    start_urls:
      - https://www.theguardian.com/world
    enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Logic.TimeoutSec)
	assert.Equal(t, 1, cfg.Logic.MaxConcurrentWorkers)
	assert.Equal(t, 24, cfg.Logic.CacheTTLHours)
	assert.Equal(t, 25, cfg.Report.TopN)
	assert.NotEmpty(t, cfg.Logic.UserAgent)

	src := cfg.Sources["guardian"]
	assert.Equal(t, "guardian", src.Name)
	assert.Equal(t, 50, src.MaxArticles)
}

func TestLoadConfigNoSources(t *testing.T) {
	path := writeConfig(t, `
db:
  connection: mongodb://localhost:27017
  database: news_miner
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `
db:
  connection: mongodb://localhost:27017
  database: news_miner
  collections:
    documents: docs
    page_cache: pages
    reports: reports
logic:
  delay_ms: 250
  timeout_sec: 10
  max_concurrent_workers: 4
  cache_ttl_hours: 6
  user_agent: "TestBot/0.1"
report:
  top_n: 10
  schedule: "0 * * * *"
sources:
  bbc:
    start_urls:
      - https://www.bbc.com/news
    follow_patterns:
      - "/news/"
    exclude_patterns:
      - "/sport/"
    max_articles: 20
    enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.DB.Collections.Documents)
	assert.Equal(t, 4, cfg.Logic.MaxConcurrentWorkers)
	assert.Equal(t, 6, cfg.Logic.CacheTTLHours)
	assert.Equal(t, "TestBot/0.1", cfg.Logic.UserAgent)
	assert.Equal(t, "0 * * * *", cfg.Report.Schedule)
	assert.Equal(t, 20, cfg.Sources["bbc"].MaxArticles)
}
