// Package lemmy is a minimal client for creating posts on a Lemmy community.
package lemmy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaharia-lab/fedintake/internal/build"
)

// CreatePostRequest is the body of POST /api/v3/post.
type CreatePostRequest struct {
	CommunityID int    `json:"community_id"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name"`
	Body        string `json:"body,omitempty"`
	Auth        string `json:"auth,omitempty"`
}

// Post is the subset of a Lemmy post the bot reads back.
type Post struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	APID  string `json:"ap_id"`
	URL   string `json:"url"`
	Local bool   `json:"local"`
}

// PostView wraps a post with its community and creator.
type PostView struct {
	Post Post `json:"post"`
}

// PostResponse is returned by post creation.
type PostResponse struct {
	PostView PostView `json:"post_view"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lemmy API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("lemmy API error (%d)", e.StatusCode)
}

// Client talks to one Lemmy instance.
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

// CreatePost publishes a post. The token is sent both as the legacy auth
// field and as a bearer header so old and new instances accept it. The
// call is not idempotent.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (*PostResponse, error) {
	req.Auth = c.token
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v3/post", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", build.UserAgent())
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request POST /api/v3/post: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &er) == nil {
			apiErr.Message = er.Error
		}
		return nil, apiErr
	}

	var out PostResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling post response: %w", err)
	}
	if out.PostView.Post.APID == "" {
		return nil, fmt.Errorf("post response carries no ap_id")
	}
	return &out, nil
}
