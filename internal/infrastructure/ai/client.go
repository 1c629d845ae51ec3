// Package ai implements the issue extraction client against an
// OpenAI-compatible chat completions endpoint (OpenRouter by default).
//
// The remote model carries the burden of interpreting log semantics; this
// package is a thin, deterministic contract-enforcer around it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// Client talks to one configured model endpoint for both extraction and chat.
type Client struct {
	endpoint   string
	modelID    string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
	logger     ports.Logger
}

// NewClient builds a client from config. The credential resolves from the
// config value first, then the configured env var, then OPENROUTER_API_KEY.
func NewClient(cfg domain.ModelSettings, log ports.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = domain.DefaultModelTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxTokens
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		modelID:    cfg.ModelID,
		apiKey:     resolveAPIKey(cfg),
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Extract implements ports.IssueExtractor.
func (c *Client) Extract(ctx context.Context, snapshot domain.LogSnapshot) (domain.Analysis, error) {
	content, err := c.complete(ctx, buildAnalysisMessages(snapshot), 0.1)
	if err != nil {
		return domain.Analysis{}, err
	}
	return parseAnalysis(content, c.logger)
}

// Chat implements ports.ChatProvider.
func (c *Client) Chat(ctx context.Context, snapshot domain.LogSnapshot, issue *domain.Issue, history []domain.ChatTurn, message string) (string, error) {
	return c.complete(ctx, buildChatMessages(snapshot, issue, history, message), 0.3)
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrUnauthorized)
	}

	payload := chatCompletionRequest{
		Model:       c.modelID,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: %s: %s", ErrTransport, resp.Status, bytes.TrimSpace(raw))
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	content := decoded.FirstMessage()
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return content, nil
}

func resolveAPIKey(cfg domain.ModelSettings) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if cfg.AuthEnvVar != "" {
		if value := os.Getenv(cfg.AuthEnvVar); value != "" {
			return value
		}
	}
	return os.Getenv("OPENROUTER_API_KEY")
}

var (
	_ ports.IssueExtractor = (*Client)(nil)
	_ ports.ChatProvider   = (*Client)(nil)
)
