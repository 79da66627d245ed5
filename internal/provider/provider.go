// Package provider wraps external text-generation services behind a
// single Generate call. The retry Client handles transient transport
// failures with bounded exponential backoff; quality-driven iteration
// lives elsewhere and never reaches into this budget.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Prompt is one generation request to a provider.
type Prompt struct {
	System string
	User   string
}

// Provider produces a draft for a prompt. Implementations must be safe
// for concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Error is a provider failure with enough shape to pick a retry policy.
// Transient failures (timeouts, 5xx) may be retried; the rest (bad
// request, auth, quota exhaustion) propagate immediately.
type Error struct {
	Service   string
	Status    int
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a provider error worth retrying.
func IsTransient(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Retry policy defaults.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 500 * time.Millisecond
)

// Client wraps a Provider with bounded retry. Each retry doubles the
// delay. Non-transient errors and context cancellation stop the loop.
type Client struct {
	provider  Provider
	attempts  int
	baseDelay time.Duration
}

// NewClient builds a retrying client around p. Non-positive attempts or
// delay fall back to the defaults.
func NewClient(p Provider, attempts int, baseDelay time.Duration) *Client {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Client{provider: p, attempts: attempts, baseDelay: baseDelay}
}

// Name returns the wrapped provider's name.
func (c *Client) Name() string { return c.provider.Name() }

// Generate calls the provider, retrying transient failures with
// exponential backoff. The last error is returned when the budget is
// exhausted.
func (c *Client) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.attempts; attempt++ {
		text, err := c.provider.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return "", err
		}
		if attempt == c.attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.attempts, lastErr)
}
