package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return c, srv
}

func TestExchangeCode(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/oauth/access_token", r.URL.Path)
		assert.Equal(t, "test-code", r.URL.Query().Get("code"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "user-token",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()

	token, err := c.ExchangeCode(context.Background(), "app", "secret", "http://cb", "test-code")
	require.NoError(t, err)
	assert.Equal(t, "user-token", token)
}

func TestExchangeCodeMissingToken(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"token_type": "bearer"})
	}))
	defer srv.Close()

	_, err := c.ExchangeCode(context.Background(), "app", "secret", "http://cb", "code")
	require.Error(t, err)
}

func TestExchangeCodeErrorEnvelope(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// error envelope with HTTP 200 still counts as a failure
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid verification code format.",
				"code":    100,
			},
		})
	}))
	defer srv.Close()

	_, err := c.ExchangeCode(context.Background(), "app", "secret", "http://cb", "bad")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 100, apiErr.Code)
}

func TestListPages(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"id": "p1", "name": "Page One", "access_token": "pt1"},
				{"id": "p2", "name": "Page Two"},
			},
		})
	}))
	defer srv.Close()

	pages, err := c.ListPages(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "pt1", pages[0].AccessToken)
	assert.Empty(t, pages[1].AccessToken)
}

func TestListPagesSingleObject(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "p1", "name": "Only Page"},
		})
	}))
	defer srv.Close()

	pages, err := c.ListPages(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Only Page", pages[0].Name)
}

func TestGetPageInstagramAccountAbsent(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "p1"})
	}))
	defer srv.Close()

	igID, err := c.GetPageInstagramAccount(context.Background(), "p1", "token")
	require.NoError(t, err)
	assert.Empty(t, igID)
}

func TestCreateMediaContainer(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v20.0/ig-user/media", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "http://img", body["image_url"])
		assert.Equal(t, "hello", body["caption"])

		json.NewEncoder(w).Encode(map[string]string{"id": "creation-1"})
	}))
	defer srv.Close()

	id, err := c.CreateMediaContainer(context.Background(), "ig-user", "token", "http://img", "hello")
	require.NoError(t, err)
	assert.Equal(t, "creation-1", id)
}

func TestCreateMediaContainerMissingID(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := c.CreateMediaContainer(context.Background(), "ig-user", "token", "http://img", "hello")
	require.Error(t, err)
}

func TestGetContainerStatus(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		hasStatus  bool
		statusCode string
	}{
		{"status_code field", `{"status_code":"FINISHED","id":"c1"}`, true, "FINISHED"},
		{"nested status object", `{"status":{"code":"IN_PROGRESS"},"id":"c1"}`, true, "IN_PROGRESS"},
		{"no status at all", `{"id":"c1"}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			status, err := c.GetContainerStatus(context.Background(), "c1", "token")
			require.NoError(t, err)
			assert.Equal(t, tt.hasStatus, status.HasStatus)
			assert.Equal(t, tt.statusCode, status.StatusCode)
			assert.JSONEq(t, tt.payload, string(status.Raw))
		})
	}
}

func TestPublishMedia(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/ig-user/media_publish", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "creation-1", body["creation_id"])

		json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
	}))
	defer srv.Close()

	id, err := c.PublishMedia(context.Background(), "ig-user", "creation-1", "token")
	require.NoError(t, err)
	assert.Equal(t, "media-9", id)
}

func TestDoHTTPError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	_, err := c.ListPages(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
