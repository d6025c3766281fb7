package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Compile-time interface check.
var _ Reasoner = (*OpenAIClient)(nil)

// SystemInstruction is sent ahead of every prompt.
const SystemInstruction = "You are a Cultural Reasoning assistant. You help adapt images from one culture to another. Return ONLY valid JSON."

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
	defaultTemperature = 0.2
)

// OpenAIClient implements Reasoner over the OpenAI chat completions API.
// It keeps no per-call state and is safe for concurrent use.
type OpenAIClient struct {
	http        *http.Client
	apiKey      string
	baseURL     string
	model       string
	maxAttempts int
	backoff     time.Duration
	temperature float64
	logger      *zap.Logger
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenAIClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAIClient) {
		c.http = hc
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithModel sets the model identifier.
func WithModel(m string) Option {
	return func(c *OpenAIClient) {
		c.model = m
	}
}

// WithMaxAttempts bounds the number of transport attempts per decision.
func WithMaxAttempts(n int) Option {
	return func(c *OpenAIClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay after the first failed attempt. Each further
// delay doubles.
func WithBackoff(d time.Duration) Option {
	return func(c *OpenAIClient) {
		c.backoff = d
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *OpenAIClient) {
		c.temperature = t
	}
}

// WithLogger sets the logger used for retry and failure reporting.
func WithLogger(l *zap.Logger) Option {
	return func(c *OpenAIClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewOpenAIClient creates a client authenticating with apiKey.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		temperature: defaultTemperature,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// transportError marks failures worth retrying.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// Decide sends prompt to the chat completions endpoint and parses the JSON
// decision in the first choice. Transport failures are retried with
// exponential backoff; every failure path yields a fallback Result.
func (c *OpenAIClient) Decide(ctx context.Context, prompt string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("unexpected panic in reasoning client", zap.Any("panic", r))
			res = Unexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    c.temperature,
	})
	if err != nil {
		return Unexpected(fmt.Errorf("marshal request: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		content, err := c.complete(ctx, body)
		if err == nil {
			d, perr := parseDecision(content)
			if perr != nil {
				c.logger.Error("failed to parse LLM JSON response", zap.Error(perr))
				return Invalid(perr)
			}
			return Decided(d)
		}

		var te *transportError
		if !errors.As(err, &te) {
			c.logger.Error("unexpected error in LLM client", zap.Error(err))
			if errors.Is(err, ErrInvalidResponse) {
				return Invalid(err)
			}
			return Unexpected(err)
		}

		lastErr = err
		c.logger.Warn("LLM API call failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", c.maxAttempts),
			zap.Error(err))

		if attempt == c.maxAttempts {
			break
		}
		if werr := c.wait(ctx, c.delay(attempt)); werr != nil {
			lastErr = werr
			c.logger.Warn("LLM retry aborted", zap.Error(werr))
			return Unavailable(lastErr, attempt)
		}
	}

	c.logger.Error("max retries reached for LLM API", zap.Int("attempts", c.maxAttempts))
	return Unavailable(lastErr, c.maxAttempts)
}

// delay returns the wait after the given failed attempt: backoff * 2^(attempt-1).
func (c *OpenAIClient) delay(attempt int) time.Duration {
	return c.backoff << (attempt - 1)
}

func (c *OpenAIClient) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// complete performs one HTTP round trip and returns the first choice's content.
func (c *OpenAIClient) complete(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &transportError{err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transportError{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &transportError{fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 512))}
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", &transportError{fmt.Errorf("decode response: %w", err)}
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrInvalidResponse)
	}
	return chat.Choices[0].Message.Content, nil
}

// parseDecision decodes the model's JSON object. Field types are read
// leniently: a numeric string is accepted for confidence and non-string
// values for string fields are treated as absent.
func parseDecision(content string) (Decision, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Decision{}, err
	}
	if raw == nil {
		return Decision{}, errors.New("decision is not a JSON object")
	}

	d := Decision{
		Action:       Action(stringField(raw, "action")),
		TargetObject: stringField(raw, "target_object"),
		Rationale:    stringField(raw, "rationale"),
	}
	switch v := raw["confidence"].(type) {
	case float64:
		d.Confidence = &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			d.Confidence = &f
		}
	}
	return d, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
