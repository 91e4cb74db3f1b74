// Package optimize implements the Optimizer interface against an
// Ollama-compatible /api/generate endpoint. The model is asked for a JSON
// object whose "content" field carries the annotated rewrite.
package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/rankpipe/core"
	"github.com/gaurav-prasanna/rankpipe/core/chunk"
)

const (
	DefaultEndpoint = "http://localhost:11434/api/generate"
	DefaultTimeout  = 5 * time.Minute
	// DefaultBodyWords caps how much page text goes into the prompt.
	DefaultBodyWords = 1500
)

// Sentinel errors returned by Optimize.
var (
	ErrNoKeywords     = errors.New("at least one keyword is required")
	ErrEmptyResponse  = errors.New("optimizer returned no content")
	ErrNilCrawledData = errors.New("crawled data is nil")
)

// Config configures an OllamaOptimizer.
type Config struct {
	Endpoint    string
	Model       string
	Timeout     time.Duration
	BodyWords   int
	Temperature float64
}

// OllamaOptimizer calls an Ollama-compatible generate API.
type OllamaOptimizer struct {
	endpoint    string
	model       string
	temperature float64
	chunker     *chunk.Chunker
	client      *http.Client
}

// New creates an OllamaOptimizer, filling unset fields with defaults.
func New(cfg Config) *OllamaOptimizer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BodyWords <= 0 {
		cfg.BodyWords = DefaultBodyWords
	}
	return &OllamaOptimizer{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		chunker:     chunk.New(cfg.BodyWords),
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// generateRequest is the request body for the generate API.
type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the response body from the generate API.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Optimize asks the model to rewrite page around keywords.
func (o *OllamaOptimizer) Optimize(ctx context.Context, page *core.CrawledData, keywords []string) (*core.OptimizedContent, error) {
	if page == nil {
		return nil, ErrNilCrawledData
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	body, truncated := o.chunker.Head(page.BodyContent)
	prompt := BuildPrompt(page, body, keywords, truncated)

	raw, err := o.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	content := ParseReply(raw)
	if strings.TrimSpace(content.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return content, nil
}

// generate performs a single non-streaming generate call.
func (o *OllamaOptimizer) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:   o.model,
		System:  SystemPrompt,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: generateOptions{Temperature: o.temperature},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling optimizer API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("optimizer API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding optimizer response: %w", err)
	}
	return genResp.Response, nil
}

// reply is the JSON object the model is asked to produce.
type reply struct {
	H1              string     `json:"h1"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Content         string     `json:"content"`
	FAQs            []core.FAQ `json:"faqs"`
}

// ParseReply decodes the model's reply. Models sometimes wrap the JSON in a
// code fence or ignore the format entirely; in the latter case the whole
// reply is treated as annotated content.
func ParseReply(raw string) *core.OptimizedContent {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return &core.OptimizedContent{Content: strings.TrimSpace(raw)}
	}
	return &core.OptimizedContent{
		H1:              strings.TrimSpace(r.H1),
		MetaTitle:       strings.TrimSpace(r.MetaTitle),
		MetaDescription: strings.TrimSpace(r.MetaDescription),
		Content:         r.Content,
		FAQs:            r.FAQs,
	}
}
