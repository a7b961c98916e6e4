package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewise/repokb/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.InteractionRecord{
		Namespace: "u1:o/r",
		Question:  "what does main do?",
		Answer:    "main is empty",
	}))

	records, err := store.List(ctx, "u1:o/r", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.Equal(t, "what does main do?", records[0].Question)
	assert.Equal(t, "main is empty", records[0].Answer)
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, domain.InteractionRecord{
			Namespace: "u1:o/r",
			Question:  string(rune('a' + i)),
			Answer:    "answer",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := store.List(ctx, "u1:o/r", 10)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].Question)
	assert.Equal(t, "b", records[1].Question)
	assert.Equal(t, "a", records[2].Question)
}

func TestListRespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, domain.InteractionRecord{
			Namespace: "u1:o/r",
			Question:  "q",
			Answer:    "a",
		}))
	}

	records, err := store.List(ctx, "u1:o/r", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Zero limit falls back to the default.
	records, err = store.List(ctx, "u1:o/r", 0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestListScopedToNamespace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.InteractionRecord{
		Namespace: "u1:o/r", Question: "mine", Answer: "a",
	}))
	require.NoError(t, store.Append(ctx, domain.InteractionRecord{
		Namespace: "u2:x/y", Question: "theirs", Answer: "a",
	}))

	records, err := store.List(ctx, "u1:o/r", 10)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "mine", records[0].Question)
}

func TestListEmptyNamespace(t *testing.T) {
	store := newTestStore(t)

	records, err := store.List(context.Background(), "u1:never", 10)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, domain.InteractionRecord{
		Namespace: "u1:o/r", Question: "q", Answer: "a",
	}))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.List(ctx, "u1:o/r", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
