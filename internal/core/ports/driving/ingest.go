// Package driving provides interfaces for external actors (primary/inbound ports).
package driving

import (
	"context"

	"github.com/pipewise/repokb/internal/core/domain"
)

// Ingestor turns a materialized workspace tree into vectors in a
// tenant-and-repo-scoped partition of the vector store.
type Ingestor interface {
	// Ingest discovers, chunks, embeds and upserts the workspace.
	// On a batch-level failure the returned stats reflect what was
	// durably written before the failing batch (partial ingestion is
	// observable, not opaque).
	Ingest(ctx context.Context, workspaceRoot, tenantID, repoSlug string) (domain.IngestStats, error)

	// Purge removes every vector in the namespace owned by the tenant.
	Purge(ctx context.Context, tenantID string, ns domain.Namespace) error
}
