// Package jira provides a ticket service adapter for the Jira REST API.
package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.TicketService = (*Client)(nil)

// DefaultTimeout is the HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// issueFields is the field list requested on every issue fetch.
const issueFields = "summary,description,issuetype,priority,status"

// Config holds configuration for the Jira client.
type Config struct {
	// BaseURL is the Jira site URL, e.g. https://example.atlassian.net (required).
	BaseURL string

	// Email is the account email for Basic auth (required).
	Email string

	// Token is the API token paired with the email (required).
	Token string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client fetches issues from Jira using static Basic auth.
type Client struct {
	client  *http.Client
	baseURL string
	auth    string
}

// NewClient creates a new Jira client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira: base URL is required")
	}
	if cfg.Email == "" || cfg.Token == "" {
		return nil, fmt.Errorf("jira: email and API token are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		auth:    base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.Token)),
	}, nil
}

// issueResponse is the Jira issue wire format, limited to the fields
// we request. The description may be a plain string (API v2) or an
// ADF document (API v3); it is kept raw and flattened afterwards.
type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
		IssueType   struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Priority struct {
			Name string `json:"name"`
		} `json:"priority"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

// errorResponse is Jira's error wire format.
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*domain.Issue, error) {
	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s?fields=%s",
		c.baseURL, url.PathEscape(key), url.QueryEscape(issueFields))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.auth)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(resp.StatusCode, key, body)
	}

	var issue issueResponse
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &domain.Issue{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: flattenDescription(issue.Fields.Description),
		Type:        issue.Fields.IssueType.Name,
		Priority:    issue.Fields.Priority.Name,
		Status:      issue.Fields.Status.Name,
	}, nil
}

// mapError converts Jira status codes to domain errors.
func (c *Client) mapError(status int, key string, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("issue %s: %w", key, domain.ErrNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("jira: %w", domain.ErrAuthInvalid)
	case http.StatusForbidden:
		return fmt.Errorf("issue %s: %w", key, domain.ErrAccessDenied)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.ErrorMessages) > 0 {
		return fmt.Errorf("jira error (status %d): %s", status, strings.Join(errResp.ErrorMessages, "; "))
	}
	return fmt.Errorf("jira error (status %d): %s", status, string(body))
}

// flattenDescription turns a raw description into plain text: either
// a JSON string passed through, or an ADF document walked recursively.
func flattenDescription(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(renderADF(&doc))
}
