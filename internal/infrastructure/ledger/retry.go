package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024
	// maxErrorBodyLen limits how much of a failed response body is kept on errors
	maxErrorBodyLen = 2000
)

// RequestError is a ledger request that failed after retries were
// exhausted: a non-2xx response, a malformed body, or a network failure.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string

	// retryAfter is the server-provided delay on throttled responses
	retryAfter time.Duration
}

// Error implements the error interface
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("ledger: %s %s failed", e.Method, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += " body=" + e.Body
	}
	return msg
}

// transport wraps outbound ledger calls with bounded exponential backoff.
// HTTP 429 responses are retried honoring a numeric Retry-After header;
// network failures are retried with backoff; any other response is
// returned to the caller immediately.
type transport struct {
	client      *http.Client
	token       string
	maxAttempts int
	logger      *zap.Logger

	// newBackOff builds the per-request delay schedule; replaceable in tests
	newBackOff func() backoff.BackOff
}

// newTransport creates a retrying transport from the ledger config.
func newTransport(cfg *Config, logger *zap.Logger) *transport {
	return &transport{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		token:       cfg.Token,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxInterval = 32 * time.Second
			bo.MaxElapsedTime = 0
			bo.Reset()
			return bo
		},
	}
}

// do performs one logical request, retrying transient failures. It returns
// the raw response body of the first successful (2xx) attempt.
func (t *transport) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ledger: failed to marshal request: %w", err)
		}
	}

	bo := t.newBackOff()
	var lastErr error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		respBody, retryable, err := t.attempt(ctx, method, url, payload)
		if err == nil {
			return respBody, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == t.maxAttempts {
			break
		}

		wait := bo.NextBackOff()
		if re, ok := err.(*RequestError); ok && re.StatusCode == http.StatusTooManyRequests {
			if after := re.retryAfter; after > 0 {
				wait = after
			}
		}
		t.logger.Warn("Ledger request failed, retrying",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", t.maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("ledger: %s %s failed after %d attempts: %w", method, url, t.maxAttempts, lastErr)
}

// attempt performs a single HTTP exchange. The second return value reports
// whether the failure is transient and worth retrying.
func (t *transport) attempt(ctx context.Context, method, url string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("ledger: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/json;charset=utf-8")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("ledger: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("ledger: %s %s: failed to read response: %w", method, url, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		re := &RequestError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody)),
		}
		if after := resp.Header.Get("Retry-After"); after != "" {
			if secs, perr := strconv.Atoi(after); perr == nil && secs > 0 {
				re.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, true, re
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, &RequestError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody)),
		}
	}

	return respBody, false, nil
}

// truncate caps a response body kept on an error.
func truncate(s string) string {
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen]
	}
	return s
}
