// Package qdrant provides a vector store adapter backed by the Qdrant
// REST API.
//
// All namespaces share one collection; isolation is enforced by a
// mandatory "namespace" payload field and a must-match filter on every
// query, count and delete. Qdrant point IDs must be UUIDs, so the
// deterministic record ID ("{namespace}:{globalOffset}") is mapped to a
// UUIDv5 of itself and carried verbatim in the payload. Re-upserting
// the same record ID therefore overwrites the same point.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/ports/driven"
	"github.com/pipewise/repokb/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant base URL, e.g. http://localhost:6333 (required).
	URL string

	// APIKey authenticates requests (optional for local instances).
	APIKey string

	// Collection is the collection name holding all namespaces (required).
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a REST client to Qdrant. It is safe for concurrent use and
// intended to be long-lived and shared across namespaces.
type Store struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string

	mu      sync.Mutex
	ensured bool
}

// NewStore creates a Qdrant-backed vector store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant URL is required", domain.ErrNotConfigured)
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection is required", domain.ErrNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}, nil
}

// PointID returns the deterministic Qdrant point UUID for a record ID.
func PointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(recordID)).String()
}

// Upsert writes records into the namespace, overwriting points with
// unchanged IDs. The collection is created with cosine distance on
// first use, sized to the records' vector dimension.
func (s *Store) Upsert(ctx context.Context, ns domain.Namespace, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := s.ensureCollection(ctx, len(records[0].Values)); err != nil {
		return err
	}

	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":     PointID(rec.ID),
			"vector": rec.Values,
			"payload": map[string]any{
				"id":        rec.ID,
				"namespace": ns.String(),
				"path":      rec.Metadata.Path,
				"idx":       rec.Metadata.Index,
				"text":      rec.Metadata.Text,
				"repoSlug":  rec.Metadata.RepoSlug,
				"tenantId":  rec.Metadata.TenantID,
			},
		}
	}

	// wait=true makes the write durable before the call returns, so a
	// success here means the batch is fully applied.
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	if err := s.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil); err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), ns, err)
	}

	logger.Debug("Upserted %d points into namespace %s", len(points), ns)
	return nil
}

// Query returns up to topK nearest neighbours within the namespace,
// ordered by descending cosine similarity.
func (s *Store) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int) ([]domain.QueryMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter":       namespaceFilter(ns),
	}

	var resp struct {
		Result []struct {
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("query namespace %s: %w", ns, err)
	}

	matches := make([]domain.QueryMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		var payload struct {
			ID string `json:"id"`
			domain.ChunkMetadata
		}
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode point payload: %w", err)
		}
		matches = append(matches, domain.QueryMatch{
			ID:       payload.ID,
			Score:    r.Score,
			Metadata: payload.ChunkMetadata,
		})
	}

	return matches, nil
}

// Count returns the exact number of points in the namespace.
func (s *Store) Count(ctx context.Context, ns domain.Namespace) (int, error) {
	req := map[string]any{
		"filter": namespaceFilter(ns),
		"exact":  true,
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/count", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return 0, fmt.Errorf("count namespace %s: %w", ns, err)
	}

	return resp.Result.Count, nil
}

// DeleteNamespace removes every point in the namespace.
func (s *Store) DeleteNamespace(ctx context.Context, ns domain.Namespace) error {
	req := map[string]any{
		"filter": namespaceFilter(ns),
	}

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("delete namespace %s: %w", ns, err)
	}

	logger.Info("Deleted all points in namespace %s", ns)
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// namespaceFilter builds the must-match filter scoping an operation to
// one namespace. Every read and delete goes through this.
func namespaceFilter(ns domain.Namespace) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{
				"key":   "namespace",
				"match": map[string]any{"value": ns.String()},
			},
		},
	}
}

// ensureCollection creates the collection if missing. Qdrant returns
// 200 for an existing collection with the same schema. Only success is
// latched: a transient failure here must not poison the long-lived
// client, the next upsert retries the creation.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dims,
			"distance": "Cosine",
		},
	}
	path := fmt.Sprintf("/collections/%s", s.collection)
	if err := s.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("ensure collection %s: %w", s.collection, err)
	}

	s.ensured = true
	return nil
}

// do sends one JSON request and optionally decodes the JSON response.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant unreachable: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: qdrant %s %s returned %s", domain.ErrUnavailable, method, path, resp.Status)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, path, resp.Status, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
