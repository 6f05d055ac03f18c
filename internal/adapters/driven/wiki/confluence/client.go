// Package confluence provides a wiki service adapter for the
// Confluence REST API.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.WikiService = (*Client)(nil)

// DefaultTimeout is the HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the Confluence client.
type Config struct {
	// BaseURL is the Confluence site URL including the /wiki context
	// path where applicable (required).
	BaseURL string

	// Token is the Bearer token for the API (required).
	Token string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client lists and fetches wiki pages.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewClient creates a new Confluence client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence: base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("confluence: API token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}, nil
}

// contentBody is one body representation on the wire.
type contentBody struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// contentResponse is a single content item on the wire.
type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage *contentBody `json:"storage"`
		View    *contentBody `json:"view"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
		Base  string `json:"base"`
	} `json:"_links"`
}

// listResponse is the paginated content listing on the wire.
type listResponse struct {
	Results []contentResponse `json:"results"`
	Size    int               `json:"size"`
}

// ListPages returns one window of the space's page listing, without
// bodies. A window shorter than limit means the listing is exhausted.
func (c *Client) ListPages(ctx context.Context, spaceKey string, start, limit int) ([]domain.Page, error) {
	query := url.Values{}
	query.Set("spaceKey", spaceKey)
	query.Set("type", "page")
	query.Set("start", strconv.Itoa(start))
	query.Set("limit", strconv.Itoa(limit))

	var listing listResponse
	if err := c.get(ctx, "/rest/api/content?"+query.Encode(), &listing); err != nil {
		return nil, fmt.Errorf("list space %s: %w", spaceKey, err)
	}

	pages := make([]domain.Page, 0, len(listing.Results))
	for i := range listing.Results {
		pages = append(pages, toPage(&listing.Results[i], spaceKey))
	}
	return pages, nil
}

// GetPage fetches a single page with both body representations.
func (c *Client) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	path := fmt.Sprintf("/rest/api/content/%s?expand=%s",
		url.PathEscape(id), url.QueryEscape("body.storage,body.view,space"))

	var content contentResponse
	if err := c.get(ctx, path, &content); err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}

	page := toPage(&content, content.Space.Key)
	page.Body = &domain.PageBody{}
	if content.Body.Storage != nil {
		page.Body.Storage = &domain.PageContent{
			Value:          content.Body.Storage.Value,
			Representation: content.Body.Storage.Representation,
		}
	}
	if content.Body.View != nil {
		page.Body.View = &domain.PageContent{
			Value:          content.Body.View.Value,
			Representation: content.Body.View.Representation,
		}
	}
	return &page, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrAuthInvalid
	case http.StatusForbidden:
		return domain.ErrAccessDenied
	default:
		return fmt.Errorf("confluence error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toPage(content *contentResponse, spaceKey string) domain.Page {
	page := domain.Page{
		ID:       content.ID,
		Title:    content.Title,
		SpaceKey: spaceKey,
	}
	if content.Links.WebUI != "" {
		page.WebURL = content.Links.Base + content.Links.WebUI
	}
	return page
}
