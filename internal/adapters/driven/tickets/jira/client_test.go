package jira

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		Email:   "dev@example.com",
		Token:   "token-123",
	})
	require.NoError(t, err)
	return client
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/ABC-123", r.URL.Path)
		assert.Equal(t, "summary,description,issuetype,priority,status", r.URL.Query().Get("fields"))

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:token-123"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"key": "ABC-123",
			"fields": {
				"summary": "Add login API",
				"description": {
					"type": "doc",
					"content": [
						{"type": "paragraph", "content": [{"type": "text", "text": "Implement OAuth."}]},
						{"type": "bulletList", "content": [
							{"type": "listItem", "content": [
								{"type": "paragraph", "content": [{"type": "text", "text": "refresh tokens"}]}
							]}
						]}
					]
				},
				"issuetype": {"name": "Story"},
				"priority": {"name": "High"},
				"status": {"name": "In Progress"}
			}
		}`))
	})

	issue, err := client.GetIssue(context.Background(), "ABC-123")
	require.NoError(t, err)

	assert.Equal(t, "ABC-123", issue.Key)
	assert.Equal(t, "Add login API", issue.Summary)
	assert.Equal(t, "Story", issue.Type)
	assert.Equal(t, "High", issue.Priority)
	assert.Equal(t, "In Progress", issue.Status)
	assert.Contains(t, issue.Description, "Implement OAuth.")
	assert.Contains(t, issue.Description, "- refresh tokens")
}

func TestFlattenDescription_BareListItem(t *testing.T) {
	// Malformed ADF with a listItem at the document root must degrade
	// to plain text, not crash.
	raw := []byte(`{
		"type": "listItem",
		"content": [
			{"type": "paragraph", "content": [{"type": "text", "text": "orphaned item"}]}
		]
	}`)

	got := flattenDescription(raw)
	assert.Equal(t, "- orphaned item", got)
}

func TestFlattenDescription_Garbage(t *testing.T) {
	assert.Equal(t, "", flattenDescription([]byte(`null`)))
	assert.Equal(t, "", flattenDescription([]byte(`[1, 2]`)))
	assert.Equal(t, "", flattenDescription(nil))
}

func TestGetIssue_StringDescription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"key": "ABC-7", "fields": {"summary": "S", "description": "plain text body"}}`))
	})

	issue, err := client.GetIssue(context.Background(), "ABC-7")
	require.NoError(t, err)
	assert.Equal(t, "plain text body", issue.Description)
}

func TestGetIssue_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"errorMessages":["Issue does not exist"]}`, domain.ErrNotFound},
		{"bad credentials", http.StatusUnauthorized, ``, domain.ErrAuthInvalid},
		{"no permission", http.StatusForbidden, ``, domain.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetIssue(context.Background(), "ABC-404")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetIssue_ServerErrorIncludesMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["Field 'bogus' is invalid"]}`))
	})

	_, err := client.GetIssue(context.Background(), "ABC-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'bogus' is invalid")
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://x.atlassian.net"})
	assert.Error(t, err)

	_, err = NewClient(Config{Email: "a@b.c", Token: "t"})
	assert.Error(t, err)
}
