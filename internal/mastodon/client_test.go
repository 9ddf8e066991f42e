package mastodon_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/statuses/123", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{
			"id": "123",
			"url": "https://pony.social/@artist/123",
			"created_at": "2024-03-02T17:59:00.000Z",
			"account": {"id": "7", "acct": "artist"},
			"media_attachments": [{"id": "m1", "preview_url": "https://cdn/p1.png"}],
			"in_reply_to_id": null
		}`)
	}))
	defer srv.Close()

	c := mastodon.NewClient(srv.URL, "tok")
	st, err := c.GetStatus(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", st.ID)
	assert.Equal(t, "artist", st.Account.Acct)
	assert.Nil(t, st.InReplyToID)
	assert.Nil(t, st.Tags)
	assert.True(t, st.HasMedia())
	assert.False(t, st.HasMentions())
	assert.Equal(t, time.Date(2024, 3, 2, 17, 59, 0, 0, time.UTC), st.CreatedAt.UTC())
}

func TestGetStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Record not found"}`)
	}))
	defer srv.Close()

	_, err := mastodon.NewClient(srv.URL, "tok").GetStatus(context.Background(), "9")
	require.Error(t, err)

	var apiErr *mastodon.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Record not found", apiErr.Message)
	assert.Contains(t, err.Error(), "/api/v1/statuses/9")
}

func TestGetStatus_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := mastodon.NewClient(srv.URL, "tok").GetStatus(context.Background(), "9")
	assert.ErrorContains(t, err, "unmarshaling response")
}

func TestGetContext_MissingDescendants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/statuses/55/context", r.URL.Path)
		_, _ = io.WriteString(w, `{"ancestors": []}`)
	}))
	defer srv.Close()

	tc, err := mastodon.NewClient(srv.URL, "tok").GetContext(context.Background(), "55")
	require.NoError(t, err)
	assert.Nil(t, tc.Descendants)
}

func TestPostStatus(t *testing.T) {
	var (
		gotBody map[string]any
		gotKey  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/statuses", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"id":"900"}`)
	}))
	defer srv.Close()

	c := mastodon.NewClient(srv.URL, "tok")
	st, err := c.PostStatus(context.Background(), mastodon.NewStatus{
		Status:      "hello",
		InReplyToID: "55",
		Visibility:  mastodon.VisibilityDirect,
		Language:    "en",
	}, "key-123")
	require.NoError(t, err)
	assert.Equal(t, "900", st.ID)
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "hello", gotBody["status"])
	assert.Equal(t, "55", gotBody["in_reply_to_id"])
	assert.Equal(t, []any{}, gotBody["media_ids"])
	assert.Equal(t, false, gotBody["sensitive"])
	assert.Equal(t, "", gotBody["spoiler_text"])
	assert.Equal(t, "direct", gotBody["visibility"])
}

func TestListNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications", r.URL.Path)
		assert.Equal(t, []string{"follow_request"}, r.URL.Query()["exclude_types[]"])
		_, _ = io.WriteString(w, `[
			{"id":"1","type":"mention","account":{"acct":"a"},"status":{"id":"10"}},
			{"id":"2","type":"favourite","account":{"acct":"b"}}
		]`)
	}))
	defer srv.Close()

	ns, err := mastodon.NewClient(srv.URL, "tok").ListNotifications(context.Background(), "follow_request")
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, mastodon.NotificationMention, ns[0].Type)
	assert.Equal(t, "10", ns[0].Status.ID)
	assert.Nil(t, ns[1].Status)
	assert.Equal(t, "", ns[1].StatusURL())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := mastodon.NewClient(srv.URL, "tok").GetContext(context.Background(), "1")
	assert.ErrorContains(t, err, "executing request")
}
