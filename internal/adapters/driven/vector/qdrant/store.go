// Package qdrant provides a vector store adapter using the Qdrant
// HTTP API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quill-labs/kbpull/internal/core/domain"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "kbpull"
	DefaultVectorDim  = 1536
	DefaultTimeout    = 30 * time.Second
)

const maxErrorBodyBytes = 1024

// pointIDNamespace makes point IDs deterministic: re-ingesting the
// same chunk overwrites the previous point instead of duplicating it.
var pointIDNamespace = uuid.MustParse("8c2b7e14-5a91-4d3e-9f07-21c6d8aa4b53")

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant HTTP endpoint (default: http://localhost:6333).
	URL string

	// Collection is the collection name (default: kbpull).
	Collection string

	// VectorDim is the embedding dimensionality (default: 1536).
	VectorDim int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store reads and writes points in a single Qdrant collection.
type Store struct {
	client     *http.Client
	baseURL    string
	collection string
	vectorDim  int
}

// envelope is the wrapper Qdrant puts around every response.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

// searchResultItem is one hit in a /points/search response.
type searchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// NewStore creates a new Qdrant store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.VectorDim == 0 {
		cfg.VectorDim = DefaultVectorDim
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		vectorDim:  cfg.VectorDim,
	}, nil
}

// Ping probes the instance's readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/readyz", http.NoBody)
	if err != nil {
		return fmt.Errorf("qdrant: create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: ready check returned status %d", domain.ErrVectorStoreUnavailable, resp.StatusCode)
	}
	return nil
}

// EnsureCollection creates the collection when it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context) error {
	var listing struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/collections", nil, &listing); err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, c := range listing.Collections {
		if c.Name == s.collection {
			return nil
		}
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorDim,
			"distance": "Cosine",
		},
		"optimizers_config": map[string]any{
			"default_segment_number": 2,
		},
		"replication_factor": 1,
	}
	if err := s.doJSON(ctx, http.MethodPut, s.collectionPath(""), create, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert writes points and waits for the operation to be applied.
func (s *Store) Upsert(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	wire := make([]map[string]any, 0, len(points))
	for i := range points {
		p := &points[i]
		if p.ID == "" {
			return fmt.Errorf("qdrant: point %d has no id", i)
		}
		if s.vectorDim > 0 && len(p.Vector) != s.vectorDim {
			return fmt.Errorf("qdrant: point %s dimension mismatch: expected %d, got %d",
				p.ID, s.vectorDim, len(p.Vector))
		}
		wire = append(wire, map[string]any{
			"id":      s.pointID(p.ID),
			"vector":  p.Vector,
			"payload": p.Payload,
		})
	}

	req := map[string]any{"points": wire}
	if err := s.doJSON(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the closest points to the query vector. Filter
// entries become exact-match payload conditions, all of which must
// hold.
func (s *Store) Search(ctx context.Context, vector []float32, limit int, filter map[string]string) ([]driven.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("qdrant: query vector required")
	}
	if limit <= 0 {
		limit = 10
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if len(filter) > 0 {
		must := make([]any, 0, len(filter))
		for key, value := range filter {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
		req["filter"] = map[string]any{"must": must}
	}

	var items []searchResultItem
	if err := s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &items); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(items))
	for _, item := range items {
		hits = append(hits, driven.VectorHit{
			ID:      decodePointID(item.ID),
			Score:   item.Score,
			Payload: item.Payload,
		})
	}
	return hits, nil
}

// Clear removes every point from the collection.
func (s *Store) Clear(ctx context.Context) error {
	req := map[string]any{"filter": map[string]any{}}
	if err := s.doJSON(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), req, nil); err != nil {
		return fmt.Errorf("clear collection %s: %w", s.collection, err)
	}
	return nil
}

// Stats reports collection status and point count.
func (s *Store) Stats(ctx context.Context) (*driven.CollectionStats, error) {
	var info struct {
		Status      string `json:"status"`
		PointsCount int64  `json:"points_count"`
	}
	if err := s.doJSON(ctx, http.MethodGet, s.collectionPath(""), nil, &info); err != nil {
		return nil, fmt.Errorf("collection info: %w", err)
	}
	return &driven.CollectionStats{
		Status: info.Status,
		Points: info.PointsCount,
	}, nil
}

// doJSON performs one API call, unwrapping the response envelope and
// surfacing both HTTP and envelope-status errors.
func (s *Store) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, truncateBody(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if msg := envelopeStatusError(env.Status); msg != "" {
		return fmt.Errorf("qdrant: %s", msg)
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// envelopeStatusError returns a message when the envelope status is
// not "ok". The status field is either a string or an error object.
func envelopeStatusError(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}

	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return fmt.Sprintf("status %q", statusString)
	}

	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return fmt.Sprintf("status %s", status)
}

// pointID derives a deterministic UUID from a chunk ID, since Qdrant
// only accepts UUIDs or unsigned integers as point IDs.
func (s *Store) pointID(chunkID string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(s.collection+"|"+chunkID)).String()
}

func (s *Store) collectionPath(suffix string) string {
	return "/collections/" + s.collection + suffix
}

func decodePointID(raw json.RawMessage) string {
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return idString
	}
	var idNumber int64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
