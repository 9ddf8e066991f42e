package mastodon

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

	"github.com/shaharia-lab/fedintake/internal/build"
)

// Client is a bearer-authenticated client for the Mastodon REST API. It never
// retries: a failed call is reported to the caller once.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the instance at baseURL (scheme and host).
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetStatus fetches a single status by id.
func (c *Client) GetStatus(ctx context.Context, id string) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/statuses/"+url.PathEscape(id), nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetContext fetches the ancestors and descendants of a status.
func (c *Client) GetContext(ctx context.Context, id string) (*Context, error) {
	var tc Context
	path := "/api/v1/statuses/" + url.PathEscape(id) + "/context"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

// PostStatus publishes a status. A non-empty idempotencyKey is sent as the
// Idempotency-Key header so the instance collapses duplicate submissions.
func (c *Client) PostStatus(ctx context.Context, status NewStatus, idempotencyKey string) (*Status, error) {
	if status.MediaIDs == nil {
		status.MediaIDs = []string{}
	}
	var headers http.Header
	if idempotencyKey != "" {
		headers = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	var created Status
	if err := c.do(ctx, http.MethodPost, "/api/v1/statuses", status, headers, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListNotifications returns the most recent notifications, skipping the
// given types.
func (c *Client) ListNotifications(ctx context.Context, excludeTypes ...string) ([]Notification, error) {
	q := url.Values{}
	for _, t := range excludeTypes {
		q.Add("exclude_types[]", t)
	}
	path := "/api/v1/notifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var ns []Notification
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// do builds the request, applies auth and JSON encoding, and decodes the
// response into result.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	headers http.Header,
	result any,
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", build.UserAgent())
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
		var er errorResponse
		if json.Unmarshal(respBody, &er) == nil {
			apiErr.Message = er.Error
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}
