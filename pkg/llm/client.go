package llm

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v5"
	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/logging"
	"github.com/pkg/errors"
)

const (
	// RequestTimeout bounds a single Messages API call.
	RequestTimeout = 120 * time.Second
)

var (
	// ErrMissingCredential means no API key is configured.
	ErrMissingCredential = errors.New("anthropic API key is not configured")
	// ErrEmptyResponse means the API answered without any text content.
	ErrEmptyResponse = errors.New("no text content in Claude response")
)

// CallError describes a failed generation call after retries.
type CallError struct {
	Stage      string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *CallError) Error() (msg string) {
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s call failed with status %d: %v", e.Stage, e.StatusCode, e.Err)
		return msg
	}
	msg = fmt.Sprintf("%s call failed: %v", e.Stage, e.Err)
	return msg
}

func (e *CallError) Unwrap() (err error) {
	err = e.Err
	return err
}

// Request is one prompt sent to the model.
type Request struct {
	Stage     string
	Prompt    string
	MaxTokens int
}

// Client represents a Claude API client.
type Client struct {
	api          anthropic.Client
	apiKey       string
	model        string
	tokens       config.TokensConfig
	maxAttempts  int
	initialDelay time.Duration
	logger       *logging.Logger
}

// NewClient creates a new Claude API client from configuration.
// A missing API key is not an error here; every call reports ErrMissingCredential instead.
func NewClient(cfg config.Config, logger *logging.Logger) (client *Client) {
	cfg.ApplyDefaults()

	if logger == nil {
		logger = logging.Nop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: RequestTimeout}),
	}
	if cfg.AnthropicURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AnthropicURL))
	}

	client = &Client{
		api:          anthropic.NewClient(opts...),
		apiKey:       cfg.AnthropicAPIKey,
		model:        cfg.Model,
		tokens:       cfg.Tokens,
		maxAttempts:  cfg.Retry.MaxAttempts,
		initialDelay: time.Duration(cfg.Retry.InitialDelayMS) * time.Millisecond,
		logger:       logger,
	}
	return client
}

// Complete sends one prompt and returns the text of the reply.
// Rate limits, timeouts and server errors are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, req Request) (text string, err error) {
	if c.apiKey == "" {
		err = &CallError{Stage: req.Stage, Err: ErrMissingCredential}
		return text, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	attempt := 0
	operation := func() (string, error) {
		attempt++
		out, callErr := c.send(ctx, req)
		if callErr != nil && !callErr.Retryable {
			return out, backoff.Permanent(callErr)
		}
		if callErr != nil {
			return out, callErr
		}
		return out, nil
	}

	notify := func(retryErr error, wait time.Duration) {
		c.logger.Warn("retrying generation call",
			"stage", req.Stage,
			"attempt", attempt,
			"wait", wait.String(),
			"error", retryErr.Error(),
		)
	}

	text, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithNotify(notify),
	)
	if err != nil {
		var callErr *CallError
		if !errors.As(err, &callErr) {
			callErr = &CallError{Stage: req.Stage, Err: err}
		}
		c.logger.Error("generation call failed",
			"stage", req.Stage,
			"attempts", attempt,
			"status", callErr.StatusCode,
			"error", callErr.Err.Error(),
		)
		err = callErr
		return text, err
	}

	c.logger.Debug("generation call succeeded", "stage", req.Stage, "attempts", attempt, "chars", len(text))

	return text, err
}

// send performs a single Messages API call.
func (c *Client) send(ctx context.Context, req Request) (text string, callErr *CallError) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		status, retryable := classify(ctx, err)
		callErr = &CallError{Stage: req.Stage, StatusCode: status, Retryable: retryable, Err: err}
		return text, callErr
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			return text, callErr
		}
	}

	callErr = &CallError{Stage: req.Stage, Err: ErrEmptyResponse}
	return text, callErr
}

// classify reports the HTTP status of err, if any, and whether it is worth retrying.
func classify(ctx context.Context, err error) (status int, retryable bool) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		retryable = status == http.StatusRequestTimeout ||
			status == http.StatusTooManyRequests ||
			status >= http.StatusInternalServerError
		return status, retryable
	}

	// the caller gave up; retrying cannot help
	if ctx.Err() != nil {
		return status, retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		retryable = true
	}

	return status, retryable
}
