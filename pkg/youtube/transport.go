package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 << 20

// get performs a GET request against endpoint with retry logic and returns
// the raw JSON body.
//
// It handles:
// - Request construction with the API key
// - Decoding of Google API error bodies
// - Retry with exponential backoff for network, 5xx and rate limit errors
// - Context cancellation
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", c.apiKey)

	reqURL := strings.TrimRight(c.baseURL, "/") + "/" + endpoint + "?" + query.Encode()

	var lastErr error
	backoff := c.initialBackoff

	for i := 0; i < c.maxRetries; i++ {
		c.logDebugf("youtube: GET %s (attempt %d/%d)", endpoint, i+1, c.maxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "ytm/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() == nil && shouldRetryNetworkError(err) && i < c.maxRetries-1 {
				c.logDebugf("youtube: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			c.logDebugf("youtube: %s succeeded", endpoint)
			return body, nil
		}

		var errBody apiErrorBody
		_ = json.Unmarshal(body, &errBody)
		apiErr := errBody.toError(resp.StatusCode)

		if apiErr.Temporary() && i < c.maxRetries-1 {
			c.logDebugf("youtube: temporary error, retrying: %v", apiErr)
			lastErr = apiErr
			if !sleep(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		return nil, apiErr
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getJSON calls get and decodes the body into v, consulting the cache first
// when cacheKey is set.
func (c *Client) getJSON(ctx context.Context, cacheKey, endpoint string, params url.Values, v any) error {
	if c.cache != nil && cacheKey != "" {
		if data, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
			c.logDebugf("youtube: cache read failed: %v", err)
		} else if ok && json.Unmarshal(data, v) == nil {
			c.logDebugf("youtube: cache hit for %s", cacheKey)
			return nil
		}
	}

	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}

	if c.cache != nil && cacheKey != "" {
		if err := c.cache.Put(ctx, cacheKey, body); err != nil {
			c.logDebugf("youtube: cache write failed: %v", err)
		}
	}
	return nil
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
