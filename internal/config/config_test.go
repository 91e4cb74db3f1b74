package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rankpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: qwen2.5
  timeout: 90s
output:
  format: html
crawl:
  concurrency: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, "html", cfg.Output.Format)
	assert.Equal(t, 8, cfg.Crawl.Concurrency)
	assert.Equal(t, 100, cfg.Crawl.MaxPages, "unset keys keep their defaults")

	d, err := cfg.LLMTimeout()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", cfg.Output.Format)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "llm:\n  modle: typo\n"))
	assert.ErrorIs(t, err, ErrConfigParse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"model", func(c *Config) { c.LLM.Model = " " }, "llm.model"},
		{"timeout", func(c *Config) { c.LLM.Timeout = "soon" }, "llm.timeout"},
		{"negative timeout", func(c *Config) { c.LLM.Timeout = "-1s" }, "llm.timeout"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"format", func(c *Config) { c.Output.Format = "docx" }, "output.format"},
		{"colour", func(c *Config) { c.Render.HighlightColor = "green" }, "render.highlightColor"},
		{"pages", func(c *Config) { c.Crawl.MaxPages = 0 }, "crawl.maxPages"},
		{"concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, "crawl.concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
