package driving

import (
	"context"

	"github.com/pipewise/repokb/internal/core/domain"
)

// QueryService answers questions grounded in a namespace's vectors.
type QueryService interface {
	// Ask embeds the question, retrieves the most relevant chunks from
	// the namespace and synthesizes a grounded answer. Fails with
	// domain.ErrForbidden before any provider call when the namespace
	// does not belong to the tenant.
	Ask(ctx context.Context, tenantID string, ns domain.Namespace, question string, topK int) (domain.Answer, error)
}

// HistoryService reads the interaction log.
type HistoryService interface {
	// History returns up to limit past interactions for the namespace,
	// newest first. Same authorization precondition as Ask.
	History(ctx context.Context, tenantID string, ns domain.Namespace, limit int) ([]domain.InteractionRecord, error)
}
