package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v5"
)

// Analyzer sends a prompt to a text-completion service and returns the reply.
// Every failure is an *Error.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnthropicConfig configures an AnthropicAnalyzer.
type AnthropicConfig struct {
	APIKey     string
	APIKeyEnv  string // named in the missing-credential error
	Model      string
	MaxTokens  int64
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint
	RetryDelay time.Duration
}

// AnthropicAnalyzer calls the Anthropic Messages API. Rate-limit, server and
// transport failures are retried with exponential backoff.
type AnthropicAnalyzer struct {
	client anthropic.Client
	cfg    AnthropicConfig
}

// NewAnthropicAnalyzer creates an analyzer. A missing API key is reported on
// each Analyze call rather than here so callers can treat it like any other
// analysis failure.
func NewAnthropicAnalyzer(cfg AnthropicConfig) *AnthropicAnalyzer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &AnthropicAnalyzer{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
	}
}

// Analyze implements Analyzer.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	if a.cfg.APIKey == "" {
		env := a.cfg.APIKeyEnv
		if env == "" {
			env = "ANTHROPIC_API_KEY"
		}
		return "", &Error{
			Kind: KindMissingCredential,
			Err:  fmt.Errorf("%w: set the %s environment variable", ErrMissingCredential, env),
		}
	}

	attempt := 0
	op := func() (string, error) {
		attempt++
		text, err := a.call(ctx, prompt)
		if err == nil {
			return text, nil
		}

		var e *Error
		if errors.As(err, &e) && e.Kind.Retryable() {
			slog.Warn("extraction: analysis call failed", "attempt", attempt, "kind", e.Kind.String(), "error", err)
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.cfg.RetryDelay

	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(a.cfg.MaxRetries+1),
	)
	if err != nil {
		return "", asError(err)
	}
	return text, nil
}

// asError strips the retry wrapper so callers always get an *Error. A
// cancelled backoff wait surfaces as a bare context error.
func asError(err error) *Error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindOther, Err: err}
}

func (a *AnthropicAnalyzer) call(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: a.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &Error{Kind: KindEmpty, Err: ErrEmpty}
	}
	return sb.String(), nil
}

// classify turns a client error into an *Error.
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &Error{Kind: classifyStatus(apiErr.StatusCode), StatusCode: apiErr.StatusCode, Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindOther, Err: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTransport, Err: err}
	}

	return &Error{Kind: KindMalformed, Err: err}
}
