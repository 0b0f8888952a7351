// Package summarize sends extracted source text to the hosted language model
// and returns its free-text reply: meeting notes with the fixed section
// headings, or a plain-language summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/notes-engine/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// Complete sends one prompt and returns the model's text reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model replies with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// PermanentError marks a backend failure that retrying cannot fix, such as
// a rejected credential.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Summarizer turns source text into model output for one Mode.
type Summarizer struct {
	Backend Backend
	Mode    types.Mode

	// MaxInputChars truncates the source text before prompting. Zero disables.
	MaxInputChars int

	// MaxRetries bounds retries of failed backend calls (default 3).
	MaxRetries int

	Logger *slog.Logger
}

// New builds a Summarizer from the AI section of the configuration.
func New(backend Backend, mode types.Mode, cfg types.AIConfig, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		Backend:       backend,
		Mode:          mode,
		MaxInputChars: cfg.MaxInputChars,
		MaxRetries:    cfg.MaxRetries,
		Logger:        logger,
	}
}

// Structure validates text, builds the prompt for the configured mode, and
// returns the model reply. Empty or whitespace-only text fails with
// types.ErrEmptyInput without calling the backend.
func (s *Summarizer) Structure(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", types.ErrEmptyInput
	}

	truncated := Truncate(text, s.MaxInputChars)
	if s.Logger != nil && len(truncated) < len(text) {
		s.Logger.Debug("truncated source text",
			"chars", utf8.RuneCountInString(text), "limit", s.MaxInputChars)
	}

	prompt, err := RenderPrompt(s.Mode, truncated)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := s.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	out, err := callWithRetry(ctx, s.Backend, prompt, maxRetries)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Truncate returns the first limit characters of text. A limit of zero or
// less returns text unchanged. Characters are counted as runes so multi-byte
// text is never split mid-character.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff. Context errors
// are returned immediately.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := backend.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var perm *PermanentError
		if errors.As(err, &perm) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
