package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "token-123"})
	require.NoError(t, err)
	return client
}

func TestListPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content", r.URL.Path)
		assert.Equal(t, "ENG", r.URL.Query().Get("spaceKey"))
		assert.Equal(t, "page", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		// The listing never requests bodies.
		assert.Empty(t, r.URL.Query().Get("expand"))

		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		fmt.Fprintf(w, `{"results": [`)
		count := 3 - start
		if count > limit {
			count = limit
		}
		for i := 0; i < count; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": "%d", "title": "Page %d", "_links": {"webui": "/spaces/ENG/pages/%d", "base": "https://wiki.example.com"}}`,
				start+i, start+i, start+i)
		}
		fmt.Fprintf(w, `], "size": %d}`, count)
	})

	pages, err := client.ListPages(context.Background(), "ENG", 0, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "0", pages[0].ID)
	assert.Equal(t, "Page 0", pages[0].Title)
	assert.Equal(t, "ENG", pages[0].SpaceKey)
	assert.Equal(t, "https://wiki.example.com/spaces/ENG/pages/0", pages[0].WebURL)
	assert.False(t, pages[0].HasBody())

	// Second window is short, signalling exhaustion to the caller.
	pages, err = client.ListPages(context.Background(), "ENG", 2, 2)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestGetPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/42", r.URL.Path)
		assert.Equal(t, "body.storage,body.view,space", r.URL.Query().Get("expand"))

		w.Write([]byte(`{
			"id": "42",
			"title": "Deployment Guide",
			"space": {"key": "ENG"},
			"body": {
				"storage": {"value": "<p>storage body</p>", "representation": "storage"},
				"view": {"value": "<p>view body</p>", "representation": "view"}
			},
			"_links": {"webui": "/spaces/ENG/pages/42", "base": "https://wiki.example.com"}
		}`))
	})

	page, err := client.GetPage(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", page.ID)
	assert.Equal(t, "Deployment Guide", page.Title)
	assert.Equal(t, "ENG", page.SpaceKey)
	require.True(t, page.HasBody())
	assert.Equal(t, "<p>storage body</p>", page.Body.Storage.Value)
	assert.Equal(t, "<p>view body</p>", page.Body.View.Value)
	assert.Equal(t, "<p>storage body</p>", page.BodyText())
}

func TestGetPage_ErrorMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrAuthInvalid},
		{http.StatusForbidden, domain.ErrAccessDenied},
	}

	for _, tt := range tests {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		})

		_, err := client.GetPage(context.Background(), "42")
		assert.ErrorIs(t, err, tt.wantErr)
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Token: "t"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "https://wiki.example.com"})
	assert.Error(t, err)
}
