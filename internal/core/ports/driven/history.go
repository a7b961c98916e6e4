package driven

import (
	"context"

	"github.com/pipewise/repokb/internal/core/domain"
)

// InteractionStore persists question/answer pairs keyed by namespace.
// Appends are best-effort from the caller's point of view: the query
// engine absorbs store failures rather than failing the query.
type InteractionStore interface {
	// Append stores one interaction record.
	Append(ctx context.Context, record domain.InteractionRecord) error

	// List returns up to limit records for the namespace, newest first.
	List(ctx context.Context, ns domain.Namespace, limit int) ([]domain.InteractionRecord, error)

	// Close releases resources.
	Close() error
}
