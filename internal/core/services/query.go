package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/ports/driven"
	"github.com/pipewise/repokb/internal/core/ports/driving"
	"github.com/pipewise/repokb/internal/logger"
)

// Ensure QueryEngine implements the interfaces.
var (
	_ driving.QueryService   = (*QueryEngine)(nil)
	_ driving.HistoryService = (*QueryEngine)(nil)
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// contextSeparator joins retrieved chunks in the context string handed
// to the synthesis model.
const contextSeparator = "\n---\n"

// insufficientContextAnswer is returned without a synthesis call when
// retrieval finds nothing. Keeping this distinct from an Unavailable
// error lets callers tell "no matches" from "backend unreachable".
const insufficientContextAnswer = "The knowledge base contains no relevant content for this question. " +
	"Make sure the repository has been ingested."

// QueryEngine answers questions grounded in a namespace's vectors and
// keeps a best-effort interaction log.
//
// The history store and LLM are optional; asking without an LLM fails
// with domain.ErrNotConfigured, while a missing or failing history
// store never fails a query.
type QueryEngine struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.LLMService
	history  driven.InteractionStore
}

// NewQueryEngine creates a query engine. llm and history may be nil.
func NewQueryEngine(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	history driven.InteractionStore,
) *QueryEngine {
	return &QueryEngine{
		embedder: embedder,
		store:    store,
		llm:      llm,
		history:  history,
	}
}

// Ask embeds the question, retrieves the topK most similar chunks from
// the namespace, and synthesizes a grounded answer.
//
// Authorization is checked before anything else: a tenant/namespace
// mismatch fails with domain.ErrForbidden and no embedding or vector
// store call is made.
func (e *QueryEngine) Ask(ctx context.Context, tenantID string, ns domain.Namespace, question string, topK int) (domain.Answer, error) {
	if !ns.AuthorizedFor(tenantID) {
		logger.Security("Tenant %q denied query against namespace %q", tenantID, ns)
		return domain.Answer{}, fmt.Errorf("%w: tenant %q cannot access namespace %q", domain.ErrForbidden, tenantID, ns)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if e.embedder == nil {
		return domain.Answer{}, fmt.Errorf("%w: embedding service", domain.ErrNotConfigured)
	}
	if e.store == nil {
		return domain.Answer{}, fmt.Errorf("%w: vector store", domain.ErrNotConfigured)
	}
	if e.llm == nil {
		return domain.Answer{}, fmt.Errorf("%w: synthesis model", domain.ErrNotConfigured)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.Section("Query")
	logger.Debug("Namespace: %s, topK: %d", ns, topK)

	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	matches, err := e.store.Query(ctx, ns, vector, topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("query namespace %s: %w", ns, err)
	}
	logger.Debug("Retrieved %d matches", len(matches))

	if len(matches) == 0 {
		answer := domain.Answer{
			Text:    insufficientContextAnswer,
			Sources: []domain.Source{},
		}
		e.logInteraction(ctx, ns, question, answer.Text)
		return answer, nil
	}

	text, err := e.llm.Answer(ctx, question, renderContext(matches))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}

	answer := domain.Answer{
		Text:    text,
		Sources: sourcesFromMatches(matches),
	}
	e.logInteraction(ctx, ns, question, answer.Text)
	return answer, nil
}

// History returns up to limit past interactions for the namespace,
// newest first. Same authorization precondition as Ask.
func (e *QueryEngine) History(ctx context.Context, tenantID string, ns domain.Namespace, limit int) ([]domain.InteractionRecord, error) {
	if !ns.AuthorizedFor(tenantID) {
		logger.Security("Tenant %q denied history of namespace %q", tenantID, ns)
		return nil, fmt.Errorf("%w: tenant %q cannot access namespace %q", domain.ErrForbidden, tenantID, ns)
	}
	if e.history == nil {
		return nil, fmt.Errorf("%w: interaction log", domain.ErrNotConfigured)
	}

	records, err := e.history.List(ctx, ns, limit)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", ns, err)
	}
	return records, nil
}

// logInteraction appends to the interaction log, absorbing failures.
// History is best-effort and must never fail a successful query.
func (e *QueryEngine) logInteraction(ctx context.Context, ns domain.Namespace, question, answer string) {
	if e.history == nil {
		return
	}
	record := domain.InteractionRecord{
		Namespace: ns,
		Question:  question,
		Answer:    answer,
	}
	if err := e.history.Append(ctx, record); err != nil {
		logger.Warn("Interaction log append failed for %s: %v", ns, err)
	}
}

// renderContext assembles the citation-annotated context string, in the
// store's returned order (descending similarity, no re-ranking).
func renderContext(matches []domain.QueryMatch) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("File: %s (chunk %d) [score %.4f]\n%s",
			m.Metadata.Path, m.Metadata.Index, m.Score, m.Metadata.Text)
	}
	return strings.Join(parts, contextSeparator)
}

// sourcesFromMatches derives the structured source list directly from
// the matches, independent of whether the synthesized text cites them.
func sourcesFromMatches(matches []domain.QueryMatch) []domain.Source {
	sources := make([]domain.Source, len(matches))
	for i, m := range matches {
		sources[i] = domain.Source{
			Path:  m.Metadata.Path,
			Index: m.Metadata.Index,
			Score: m.Score,
		}
	}
	return sources
}
