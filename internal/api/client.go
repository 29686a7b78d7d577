package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yuvsiksha-client/monitoring"
)

// tokenSource supplies the bearer token of the active session, if any.
type tokenSource interface {
	Token() string
}

// Client talks to the Yuvsiksha backend. All responses arrive in the
// `{success, data|message}` envelope; business failures carry the server
// message verbatim.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  tokenSource
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, tokens tokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// APIError is a business failure reported by the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: %s", e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// do performs one request and decodes the response envelope. Transport
// failures and non-2xx statuses become errors; success=false does not.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	start := time.Now()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: json.Marshal: %w", err)
		}
		reader = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("api: http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		monitoring.TrackAPIRequest(path, "network_error", time.Since(start))
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.TrackAPIRequest(path, "error", time.Since(start))

		rbody, _ := io.ReadAll(resp.Body)
		var env envelope
		if err := json.Unmarshal(rbody, &env); err == nil && env.Message != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		}
		c.logger.Warn("Backend returned unexpected status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", rbody),
		)
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var env envelope
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&env); err != nil {
		monitoring.TrackAPIRequest(path, "decode_error", time.Since(start))
		return nil, fmt.Errorf("api: %s %s: json.Decode: %w", method, path, err)
	}

	monitoring.TrackAPIRequest(path, "ok", time.Since(start))
	return &env, nil
}

// call performs one request and unmarshals the envelope data into out.
// A success=false envelope becomes an APIError with the server message.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	env, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("api: %s %s: json.Unmarshal data: %w", method, path, err)
		}
	}

	return nil
}
