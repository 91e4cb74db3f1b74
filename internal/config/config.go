// Package config loads the optional rankpipe YAML configuration file.
// Every field has a default, so a missing file is not an error; CLI flags
// are applied on top by the commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/gaurav-prasanna/rankpipe/core/optimize"
	"github.com/gaurav-prasanna/rankpipe/core/render"
)

// Sentinel errors for config operations.
var (
	ErrConfigParse   = errors.New("failed to parse config")
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds all rankpipe settings.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	History HistoryConfig `yaml:"history"`
}

// LLMConfig configures the optimizer endpoint.
type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"` // Go duration, e.g. "5m"
	Temperature float64 `yaml:"temperature"`
	BodyWords   int     `yaml:"bodyWords"` // page words sent in the prompt
}

// OutputConfig defines where and how results are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // empty = current directory
	Format string `yaml:"format"` // pdf, markdown, html or json
}

// RenderConfig holds back-end styling.
type RenderConfig struct {
	HighlightColor string `yaml:"highlightColor"`
}

// CrawlConfig bounds --all runs.
type CrawlConfig struct {
	MaxPages    int    `yaml:"maxPages"`
	Concurrency int    `yaml:"concurrency"`
	Browser     bool   `yaml:"browser"` // render pages in headless Chrome
	UserAgent   string `yaml:"userAgent"`
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Endpoint:    optimize.DefaultEndpoint,
			Model:       "llama3.1",
			Timeout:     optimize.DefaultTimeout.String(),
			Temperature: 0.3,
			BodyWords:   optimize.DefaultBodyWords,
		},
		Output: OutputConfig{Format: "pdf"},
		Render: RenderConfig{HighlightColor: "#90EE90"},
		Crawl: CrawlConfig{
			MaxPages:    100,
			Concurrency: 4,
		},
		History: HistoryConfig{Path: DefaultHistoryPath()},
	}
}

// DefaultHistoryPath is history.db under the user config directory.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".rankpipe", "history.db")
	}
	return filepath.Join(dir, "rankpipe", "history.db")
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.LLM.Model) == "" {
		problems = append(problems, "llm.model is required")
	}
	if _, err := c.LLMTimeout(); err != nil {
		problems = append(problems, fmt.Sprintf("llm.timeout: %v", err))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm.temperature must be between 0 and 2")
	}
	if c.LLM.BodyWords < 0 {
		problems = append(problems, "llm.bodyWords must not be negative")
	}
	if !slices.Contains(render.Formats, strings.ToLower(c.Output.Format)) {
		problems = append(problems, fmt.Sprintf("output.format must be one of %s", strings.Join(render.Formats, ", ")))
	}
	if c.Render.HighlightColor != "" {
		if _, err := render.ParseHexColor(c.Render.HighlightColor); err != nil {
			problems = append(problems, fmt.Sprintf("render.highlightColor: %v", err))
		}
	}
	if c.Crawl.MaxPages < 1 {
		problems = append(problems, "crawl.maxPages must be at least 1")
	}
	if c.Crawl.Concurrency < 1 {
		problems = append(problems, "crawl.concurrency must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LLMTimeout parses LLM.Timeout. Empty means optimize.DefaultTimeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return optimize.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}
