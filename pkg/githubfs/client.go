// Package githubfs is a thin client for a GitHub-contents style hosted
// file API: get a file with its version token (sha), put new content back
// with the previous token for optimistic concurrency.
package githubfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the GitHub REST API base URL.
	DefaultBaseURL = "https://api.github.com"
)

// ErrConflict indicates the file store rejected a write because the
// supplied version token is stale: another client updated the file since
// it was last read. The caller must re-pull and retry.
var ErrConflict = errors.New("SYNC_CONFLICT")

// RemoteError is a non-success response from the file store that is not a
// version conflict.
type RemoteError struct {
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("file store returned status %d", e.StatusCode)
}

// FileContent is a fetched file body plus its version token.
type FileContent struct {
	Content []byte
	SHA     string
}

// Config holds client construction options.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the hosted file API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		debug:      os.Getenv("ENV") == "development",
	}
}

// GetFile fetches the file at owner/repo/path and decodes its base64 body.
func (c *Client) GetFile(ctx context.Context, owner, repo, path, token string) (*FileContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(owner, repo, path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, token)

	respBody, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &RemoteError{StatusCode: status}
	}

	var payload struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// The API wraps base64 bodies at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return &FileContent{Content: raw, SHA: payload.SHA}, nil
}

// PutFile uploads content as the new file body, carrying a human-readable
// change message and the last known version token. It returns the new
// token. A stale token yields ErrConflict.
func (c *Client) PutFile(ctx context.Context, owner, repo, path, token, message string, content []byte, sha string) (string, error) {
	body := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(owner, repo, path), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, token)

	respBody, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		// The contents API signals a stale sha with 409 or 422.
		return "", fmt.Errorf("%w: file changed remotely (status %d)", ErrConflict, status)
	case status < 200 || status > 299:
		return "", &RemoteError{StatusCode: status}
	}

	var result struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Content.SHA, nil
}

func (c *Client) contentsURL(owner, repo, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), path)
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")
}

// do executes the request and returns the raw body and status.
func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Msg("[GITHUBFS] Response received")
	}

	return respBody, resp.StatusCode, nil
}
