// Package llm holds the external language-generation capability: HTTP
// clients for the chat completion APIs the assistant role can run on. The
// core never depends on what the model says, only on the message it returns.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Supported chat backends.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
	BackendGrok      = "grok"
)

// ChatMessage is one turn of the prompt sent to a backend.
type ChatMessage struct {
	Role    string
	Content string
}

// Client calls chat completion APIs with a bounded timeout and records
// latency and token-usage telemetry.
type Client struct {
	httpClient  *http.Client
	tracer      trace.Tracer
	meter       metric.Meter
	logger      *slog.Logger
	ollamaModel string
}

// NewClient creates a Client. timeout bounds every completion request.
func NewClient(timeout time.Duration, ollamaModel string, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		tracer:      tracer,
		meter:       meter,
		logger:      logger,
		ollamaModel: ollamaModel,
	}
}

// Complete sends the system prompt and conversation to the named backend and
// returns the model's reply.
func (c *Client) Complete(ctx context.Context, backend, system string, messages []ChatMessage) (string, error) {
	switch backend {
	case BackendOpenAI:
		return c.callOpenAI(ctx, "https://api.openai.com/v1/chat/completions", "OPENAI_API_KEY", "gpt-4o-mini", system, messages)
	case BackendGrok:
		return c.callOpenAI(ctx, "https://api.grok.x.ai/v1/chat/completions", "GROK_API_KEY", "grok-1", system, messages)
	case BackendAnthropic:
		return c.callAnthropic(ctx, system, messages)
	case BackendOllama:
		return c.callOllama(ctx, system, messages)
	default:
		return "", fmt.Errorf("unknown backend: %s", backend)
	}
}

// callOpenAI calls an OpenAI-compatible chat completion endpoint.
func (c *Client) callOpenAI(ctx context.Context, url, keyEnv, model, system string, messages []ChatMessage) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai_api_call")
	defer span.End()

	start := time.Now()

	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("%s not set", keyEnv)
	}

	reqMessages := make([]map[string]string, 0, len(messages)+1)
	reqMessages = append(reqMessages, map[string]string{"role": "system", "content": system})
	for _, msg := range messages {
		reqMessages = append(reqMessages, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	reqBody := OpenAIRequest{Model: model, Messages: reqMessages}
	body, err := c.post(ctx, url, reqBody, map[string]string{"Authorization": "Bearer " + apiKey})
	if err != nil {
		return "", err
	}

	var apiResp OpenAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.recordDuration(ctx, time.Since(start))
	c.recordUsage(ctx, apiResp.Usage)

	if len(apiResp.Choices) > 0 {
		return apiResp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("empty response from %s", url)
}

// callAnthropic calls the Anthropic messages API.
func (c *Client) callAnthropic(ctx context.Context, system string, messages []ChatMessage) (string, error) {
	ctx, span := c.tracer.Start(ctx, "anthropic_api_call")
	defer span.End()

	start := time.Now()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	reqMessages := make([]AnthropicMessage, len(messages))
	for i, msg := range messages {
		reqMessages[i] = AnthropicMessage{Role: msg.Role, Content: msg.Content}
	}

	reqBody := AnthropicRequest{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
		System:    system,
		Messages:  reqMessages,
	}
	body, err := c.post(ctx, "https://api.anthropic.com/v1/messages", reqBody, map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", err
	}

	var apiResp AnthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.recordDuration(ctx, time.Since(start))
	c.recordUsage(ctx, apiResp.Usage)

	for _, content := range apiResp.Content {
		if content.Type == "text" {
			return content.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from Anthropic")
}

// callOllama calls a local Ollama server.
func (c *Client) callOllama(ctx context.Context, system string, messages []ChatMessage) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ollama_api_call")
	defer span.End()

	start := time.Now()

	reqMessages := make([]map[string]string, 0, len(messages)+1)
	reqMessages = append(reqMessages, map[string]string{"role": "system", "content": system})
	for _, msg := range messages {
		reqMessages = append(reqMessages, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	reqBody := OllamaRequest{Model: c.ollamaModel, Messages: reqMessages, Stream: false}
	body, err := c.post(ctx, "http://localhost:11434/api/chat", reqBody, nil)
	if err != nil {
		return "", err
	}

	var apiResp OllamaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.recordDuration(ctx, time.Since(start))
	return apiResp.Message.Content, nil
}

// post sends a JSON request and returns the raw response body.
func (c *Client) post(ctx context.Context, url string, reqBody any, headers map[string]string) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}
	return body, nil
}

// recordDuration records the request duration histogram.
func (c *Client) recordDuration(ctx context.Context, duration time.Duration) {
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}
}

// recordUsage records token-usage counters from an API usage map.
func (c *Client) recordUsage(ctx context.Context, usage map[string]any) {
	if usage == nil {
		return
	}
	for key, value := range usage {
		intVal, ok := value.(float64)
		if !ok {
			continue
		}
		counter, err := c.meter.Int64Counter(
			fmt.Sprintf("llm.usage.%s", key),
			metric.WithDescription(fmt.Sprintf("LLM usage metric: %s", key)),
		)
		if err != nil {
			c.logger.Warn("failed to create counter", "key", key, "error", err)
			continue
		}
		counter.Add(ctx, int64(intVal))
	}
}
