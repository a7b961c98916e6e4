package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewise/repokb/internal/adapters/driven/vectorstore/memory"
	"github.com/pipewise/repokb/internal/adapters/driven/vectorstore/qdrant"
	"github.com/pipewise/repokb/internal/config"
)

func TestBuildVectorStoreFallbackWarns(t *testing.T) {
	cfg = &config.Config{}
	var stderr bytes.Buffer

	store, err := buildVectorStore(&stderr)

	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	// The notice is not verbose-gated: in-memory data dies with the
	// process, so a follow-up command in a new process finds nothing.
	assert.Contains(t, stderr.String(), "in-memory")
	assert.Contains(t, stderr.String(), "will not survive")
}

func TestBuildVectorStoreQdrantNoWarning(t *testing.T) {
	cfg = &config.Config{}
	cfg.Vector.URL = "http://localhost:6333"
	cfg.Vector.Collection = "chunks"
	var stderr bytes.Buffer

	store, err := buildVectorStore(&stderr)

	require.NoError(t, err)
	assert.IsType(t, &qdrant.Store{}, store)
	assert.Empty(t, stderr.String())
}
