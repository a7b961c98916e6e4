package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewise/repokb/internal/core/domain"
)

// --- Mock implementations ---

// mockQueryStore implements driven.VectorStore for query tests.
type mockQueryStore struct {
	matches  []domain.QueryMatch
	queryErr error
	queries  int
	lastTopK int
	lastNS   domain.Namespace
}

func (m *mockQueryStore) Upsert(_ context.Context, _ domain.Namespace, _ []domain.VectorRecord) error {
	return nil
}

func (m *mockQueryStore) Query(_ context.Context, ns domain.Namespace, _ []float32, topK int) ([]domain.QueryMatch, error) {
	m.queries++
	m.lastNS = ns
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.matches) {
		return m.matches[:topK], nil
	}
	return m.matches, nil
}

func (m *mockQueryStore) Count(_ context.Context, _ domain.Namespace) (int, error) {
	return len(m.matches), nil
}

func (m *mockQueryStore) DeleteNamespace(_ context.Context, _ domain.Namespace) error {
	return nil
}

func (m *mockQueryStore) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	answer      string
	answerErr   error
	calls       int
	lastContext string
}

func (m *mockLLM) Answer(_ context.Context, _, contextText string) (string, error) {
	m.calls++
	m.lastContext = contextText
	if m.answerErr != nil {
		return "", m.answerErr
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockHistory implements driven.InteractionStore for testing.
type mockHistory struct {
	records   []domain.InteractionRecord
	appendErr error
	listErr   error
}

func (m *mockHistory) Append(_ context.Context, record domain.InteractionRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistory) List(_ context.Context, ns domain.Namespace, limit int) ([]domain.InteractionRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.InteractionRecord
	for _, rec := range m.records {
		if rec.Namespace == ns {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockHistory) Close() error { return nil }

func appMatch() domain.QueryMatch {
	return domain.QueryMatch{
		ID:    "u1:o/r:0",
		Score: 0.91,
		Metadata: domain.ChunkMetadata{
			Path:     "src/app.js",
			Index:    0,
			Text:     "function main(){}\n",
			RepoSlug: "o/r",
			TenantID: "u1",
		},
	}
}

// --- Tests ---

func TestAskReturnsAnswerAndSources(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	llm := &mockLLM{answer: "main is an empty function.\n\nSources:\n- src/app.js (chunk 0)"}
	history := &mockHistory{}
	engine := NewQueryEngine(&mockEmbedder{}, store, llm, history)

	answer, err := engine.Ask(context.Background(), "u1", "u1:o/r", "what does main do?", 3)

	require.NoError(t, err)
	assert.Equal(t, llm.answer, answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "src/app.js", answer.Sources[0].Path)
	assert.Equal(t, 0, answer.Sources[0].Index)
	assert.InDelta(t, 0.91, answer.Sources[0].Score, 1e-9)

	assert.Equal(t, domain.Namespace("u1:o/r"), store.lastNS)
	assert.Equal(t, 3, store.lastTopK)

	// The interaction was logged.
	require.Len(t, history.records, 1)
	assert.Equal(t, "what does main do?", history.records[0].Question)
}

func TestAskContextRendering(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	llm := &mockLLM{answer: "ok"}
	engine := NewQueryEngine(&mockEmbedder{}, store, llm, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "what does main do?", 3)

	require.NoError(t, err)
	assert.Contains(t, llm.lastContext, "File: src/app.js (chunk 0) [score 0.9100]")
	assert.Contains(t, llm.lastContext, "function main(){}")
}

func TestAskContextOrderFollowsStore(t *testing.T) {
	second := appMatch()
	second.ID = "u1:o/r:7"
	second.Score = 0.55
	second.Metadata.Path = "README.md"
	second.Metadata.Index = 2

	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch(), second}}
	llm := &mockLLM{answer: "ok"}
	engine := NewQueryEngine(&mockEmbedder{}, store, llm, nil)

	answer, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 5)

	require.NoError(t, err)
	// Matches are used in store order, no re-ranking.
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "src/app.js", answer.Sources[0].Path)
	assert.Equal(t, "README.md", answer.Sources[1].Path)
	assert.Less(t,
		strings.Index(llm.lastContext, "src/app.js"),
		strings.Index(llm.lastContext, "README.md"))
}

func TestAskForbidden(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	llm := &mockLLM{answer: "ok"}
	embedder := &mockEmbedder{}
	engine := NewQueryEngine(embedder, store, llm, nil)

	_, err := engine.Ask(context.Background(), "u2", "u1:o/r", "question", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	// No embedding or vector store call is made.
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, store.queries)
	assert.Equal(t, 0, llm.calls)
}

func TestAskForbiddenPrefixCollision(t *testing.T) {
	engine := NewQueryEngine(&mockEmbedder{}, &mockQueryStore{}, &mockLLM{}, nil)

	_, err := engine.Ask(context.Background(), "ab", "abc:repo", "question", 3)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAskEmptyQuestion(t *testing.T) {
	engine := NewQueryEngine(&mockEmbedder{}, &mockQueryStore{}, &mockLLM{}, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "   ", 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAskNoMatches(t *testing.T) {
	store := &mockQueryStore{}
	llm := &mockLLM{answer: "should not be called"}
	engine := NewQueryEngine(&mockEmbedder{}, store, llm, nil)

	answer, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 3)

	// "No matches" is a successful answer stating insufficient context,
	// not an error: it must stay distinguishable from an unreachable
	// backend.
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
	assert.Equal(t, 0, llm.calls)
}

func TestAskStoreUnavailable(t *testing.T) {
	store := &mockQueryStore{queryErr: fmt.Errorf("%w: index offline", domain.ErrUnavailable)}
	engine := NewQueryEngine(&mockEmbedder{}, store, &mockLLM{}, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestAskNoLLMConfigured(t *testing.T) {
	engine := NewQueryEngine(&mockEmbedder{}, &mockQueryStore{}, nil, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 3)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
}

func TestAskHistoryFailureAbsorbed(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	history := &mockHistory{appendErr: errors.New("disk full")}
	engine := NewQueryEngine(&mockEmbedder{}, store, &mockLLM{answer: "ok"}, history)

	answer, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 3)

	// A logging failure must not fail a query that otherwise succeeded.
	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Text)
}

func TestAskLLMFailure(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	llm := &mockLLM{answerErr: fmt.Errorf("%w: model overloaded", domain.ErrUnavailable)}
	engine := NewQueryEngine(&mockEmbedder{}, store, llm, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestAskDefaultTopK(t *testing.T) {
	store := &mockQueryStore{matches: []domain.QueryMatch{appMatch()}}
	engine := NewQueryEngine(&mockEmbedder{}, store, &mockLLM{answer: "ok"}, nil)

	_, err := engine.Ask(context.Background(), "u1", "u1:o/r", "question", 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, store.lastTopK)
}

func TestHistoryAuthorized(t *testing.T) {
	history := &mockHistory{records: []domain.InteractionRecord{
		{Namespace: "u1:o/r", Question: "q1", Answer: "a1"},
		{Namespace: "u2:other", Question: "q2", Answer: "a2"},
	}}
	engine := NewQueryEngine(nil, nil, nil, history)

	records, err := engine.History(context.Background(), "u1", "u1:o/r", 10)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "q1", records[0].Question)
}

func TestHistoryForbidden(t *testing.T) {
	history := &mockHistory{listErr: errors.New("should not be reached")}
	engine := NewQueryEngine(nil, nil, nil, history)

	_, err := engine.History(context.Background(), "u2", "u1:o/r", 10)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestHistoryNotConfigured(t *testing.T) {
	engine := NewQueryEngine(nil, nil, nil, nil)

	_, err := engine.History(context.Background(), "u1", "u1:o/r", 10)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
}
