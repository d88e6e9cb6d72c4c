package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "http://127.0.0.1:8000"
	maxResponseBody = 4 << 20
)

// Client talks to the quiz service. Every request carries the session cookie
// jar and a JSON content type.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var configured http.Client
	if httpClient != nil {
		configured = *httpClient
	}
	if configured.Jar == nil {
		jar, _ := cookiejar.New(nil)
		configured.Jar = jar
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &configured,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends one request and decodes a 2xx JSON body into responseBody when
// it is non-nil.
func (c *Client) Call(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	c.logger.Info("api request",
		zap.String("direction", "out"),
		zap.String("method", method),
		zap.String("endpoint", path),
	)

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("api transport error",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return &TransportError{
			Message: fmt.Sprintf("%s: %v", ErrServiceUnavailable, err),
			Err:     err,
		}
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		c.logger.Warn("api read error",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Int("status", response.StatusCode),
			zap.Error(err),
		)
		return &TransportError{
			Message: fmt.Sprintf("%s: reading response: %v", ErrServiceUnavailable, err),
			Err:     err,
		}
	}

	c.logger.Info("api response",
		zap.String("direction", "in"),
		zap.String("method", method),
		zap.String("endpoint", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		requestErr := &RequestError{
			Status: response.StatusCode,
			Body:   string(payload),
		}
		c.logger.Warn("api error response",
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Int("status", response.StatusCode),
			zap.String("body", requestErr.Body),
		)
		return requestErr
	}

	if responseBody == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, responseBody); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
