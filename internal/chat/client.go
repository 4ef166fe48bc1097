// Package chat forwards real-estate assistant prompts to the Gemini API.
package chat

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

	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/itsdivyansh1/proptech-v2-ai/config"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
)

var (
	ErrDisabled    = errors.New("chat is disabled")
	ErrEmptyReply  = errors.New("model returned no text")
	ErrUnavailable = errors.New("chat provider unavailable")
)

// Client generates a reply for a prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// BuildPrompt joins the caller's system prompt and message into a single
// completion prompt.
func BuildPrompt(systemPrompt, message string) string {
	return fmt.Sprintf("%s\n\nUser: %s\n\nAssistant:", systemPrompt, message)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *logrus.Logger
}

// NewClient creates a Gemini client, or a disabled client when no API key is
// configured.
func NewClient(cfg config.ChatConfig, logger *logrus.Logger) Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.APIKey == "" {
		logger.Warn("GOOGLE_API_KEY not set, chat is disabled")
		return noopClient{}
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller hanging up says nothing about the provider
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Chat circuit breaker changed state")
		},
	})

	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
		logger:     logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *client) IsEnabled() bool {
	return true
}

func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordChat("circuit_open", time.Since(start))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, context.Canceled):
		metrics.RecordChat("canceled", time.Since(start))
		return "", err
	case err != nil:
		metrics.RecordChat("error", time.Since(start))
		c.logger.WithError(err).WithField("model", c.model).Error("Chat completion failed")
		return "", err
	}

	metrics.RecordChat("ok", time.Since(start))
	return reply, nil
}

func (c *client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(msg))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range result.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyReply
	}

	return sb.String(), nil
}

// noopClient is used when chat is not configured.
type noopClient struct{}

func (noopClient) Complete(context.Context, string) (string, error) {
	return "", ErrDisabled
}

func (noopClient) IsEnabled() bool {
	return false
}
