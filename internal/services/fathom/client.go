package fathom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.fathom.ai/external/v1"

// maxAPIRetries bounds the backoff loop for rate-limited or 5xx responses
const maxAPIRetries = 3

// Client handles communication with the Fathom API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Fathom API client
func NewClient(apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// apiError carries the human-readable message extracted from an error response
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return e.Message
}

// doRequest performs an authenticated GET against the Fathom API, retrying
// rate-limited and server errors with exponential backoff.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.logger.WithField("url", fullURL).Debug("Making Fathom API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			var urlErr *url.Error
			if errors.As(err, &urlErr) && urlErr.Timeout() {
				return backoff.Permanent(fmt.Errorf("request timed out"))
			}
			return backoff.Permanent(fmt.Errorf("could not connect to Fathom API"))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(&apiError{StatusCode: resp.StatusCode, Message: "invalid API key"})
		case resp.StatusCode == http.StatusTooManyRequests:
			// Retryable; surfaced as-is once retries are exhausted
			return &apiError{StatusCode: resp.StatusCode, Message: "rate limit exceeded, please wait and try again"}
		case resp.StatusCode >= 500:
			return &apiError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
		case resp.StatusCode >= 400:
			bodyBytes, _ := io.ReadAll(resp.Body)
			var errBody struct {
				Message string `json:"message"`
			}
			msg := fmt.Sprintf("API error: %d", resp.StatusCode)
			if err := json.Unmarshal(bodyBytes, &errBody); err == nil && errBody.Message != "" {
				msg = errBody.Message
			}
			return backoff.Permanent(&apiError{StatusCode: resp.StatusCode, Message: msg})
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}

		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAPIRetries), ctx)
	return backoff.Retry(operation, bo)
}

// ValidateKey checks the API key by requesting a single meeting
func (c *Client) ValidateKey(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")

	var probe json.RawMessage
	if err := c.doRequest(ctx, "/meetings", params, &probe); err != nil {
		return err
	}
	return nil
}
