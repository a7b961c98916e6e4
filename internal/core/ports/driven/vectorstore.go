package driven

import (
	"context"

	"github.com/pipewise/repokb/internal/core/domain"
)

// VectorStore persists and queries embedding vectors, partitioned by
// namespace. Implementations must be safe for concurrent use: the
// client is long-lived and shared across all namespaces.
//
// Both operations fail with domain.ErrUnavailable when the backing
// index is unreachable and domain.ErrNotConfigured when required
// connection parameters are absent, so callers can distinguish
// permanent misconfiguration from transient outage.
type VectorStore interface {
	// Upsert writes records into the namespace, overwriting any existing
	// record with the same ID. A transient failure must surface as an
	// error, never as a silently dropped sub-batch.
	Upsert(ctx context.Context, ns domain.Namespace, records []domain.VectorRecord) error

	// Query returns up to topK nearest neighbours for the vector within
	// the namespace, ordered by descending similarity, each with its
	// stored metadata.
	Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int) ([]domain.QueryMatch, error)

	// Count returns the number of records stored in the namespace.
	Count(ctx context.Context, ns domain.Namespace) (int, error)

	// DeleteNamespace removes every record in the namespace. Used to
	// reset a partition before a clean re-ingestion.
	DeleteNamespace(ctx context.Context, ns domain.Namespace) error

	// Close releases resources.
	Close() error
}
