// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the model API clients.
package httputil

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// RetryTransport is an http.RoundTripper that retries requests answered with
// HTTP 429 (Too Many Requests) using exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt: 10 s, 20 s, 40 s, 80 s, 160 s.
//
// Requests with a body are replayed through req.GetBody; a request whose body
// cannot be replayed is sent once. After exhausting retries the last 429
// response is returned so the caller can inspect it. If the request context
// is cancelled during a backoff wait RoundTrip returns ctx.Err().
type RetryTransport struct {
	// Base performs the actual requests. Nil uses http.DefaultTransport.
	Base http.RoundTripper

	// MaxRetries is the number of retries after the first attempt.
	// Zero uses the default (5).
	MaxRetries int

	// Logger receives one debug record per retry. Nil disables logging.
	Logger *slog.Logger
}

// NewClient returns an http.Client with the given timeout whose transport
// retries rate-limited requests.
func NewClient(timeout time.Duration, maxRetries int, logger *slog.Logger) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &RetryTransport{
			MaxRetries: maxRetries,
			Logger:     logger,
		},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		attemptReq := req
		if attempt > 0 {
			var err error
			if attemptReq, err = rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err := base.RoundTrip(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries, or the body cannot be sent again: return the 429 as-is.
		if attempt >= maxRetries || (req.Body != nil && req.GetBody == nil) {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if t.Logger != nil {
			t.Logger.Debug("rate limited, retrying",
				"url", req.URL.Redacted(), "backoff", backoff,
				"attempt", attempt+1, "max_retries", maxRetries)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// rewind clones req with a fresh copy of its body.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replaying request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
