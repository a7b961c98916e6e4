// Package memory provides an in-memory vector store for tests and for
// local runs without a Qdrant endpoint.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps vectors in per-namespace maps keyed by record ID and
// ranks queries by cosine similarity. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	namespaces map[domain.Namespace]map[string]domain.VectorRecord
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{
		namespaces: make(map[domain.Namespace]map[string]domain.VectorRecord),
	}
}

// Upsert writes records into the namespace, overwriting records with
// unchanged IDs.
func (s *Store) Upsert(_ context.Context, ns domain.Namespace, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.namespaces[ns]
	if !ok {
		bucket = make(map[string]domain.VectorRecord, len(records))
		s.namespaces[ns] = bucket
	}
	for _, rec := range records {
		bucket[rec.ID] = rec
	}
	return nil
}

// Query returns up to topK records from the namespace ordered by
// descending cosine similarity, each with its stored metadata.
func (s *Store) Query(_ context.Context, ns domain.Namespace, vector []float32, topK int) ([]domain.QueryMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.namespaces[ns]
	matches := make([]domain.QueryMatch, 0, len(bucket))
	for _, rec := range bucket {
		matches = append(matches, domain.QueryMatch{
			ID:       rec.ID,
			Score:    cosineSimilarity(vector, rec.Values),
			Metadata: rec.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of records stored in the namespace.
func (s *Store) Count(_ context.Context, ns domain.Namespace) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[ns]), nil
}

// DeleteNamespace removes every record in the namespace.
func (s *Store) DeleteNamespace(_ context.Context, ns domain.Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, ns)
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either has zero magnitude or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
