package domain

import "fmt"

// ChunkMetadata is the payload stored alongside every vector. It carries
// a verbatim copy of the chunk text so retrieval does not require a
// second file fetch.
type ChunkMetadata struct {
	// Path is the relative path of the source file.
	Path string `json:"path"`

	// Index is the chunk's zero-based position within its file.
	Index int `json:"idx"`

	// Text is the verbatim chunk content.
	Text string `json:"text"`

	// RepoSlug identifies the repository.
	RepoSlug string `json:"repoSlug"`

	// TenantID is the owning tenant.
	TenantID string `json:"tenantId"`
}

// VectorRecord is one (id, vector, metadata) tuple written to the
// vector store.
//
// The ID is deterministic given the chunk's position in the global
// ingestion sequence: "{namespace}:{globalOffset}". Re-ingesting an
// unchanged workspace therefore overwrites records in place.
type VectorRecord struct {
	// ID is the deterministic record identity.
	ID string

	// Values is the embedding vector.
	Values []float32

	// Metadata describes the chunk the vector was computed from.
	Metadata ChunkMetadata
}

// VectorID builds the deterministic record identity for a chunk at the
// given offset in the global ingestion sequence.
func VectorID(ns Namespace, globalOffset int) string {
	return fmt.Sprintf("%s:%d", ns, globalOffset)
}

// QueryMatch is one nearest-neighbour result from the vector store.
// Ephemeral; surfaced to the caller and optionally logged, never
// persisted directly.
type QueryMatch struct {
	// ID is the matched record's identity.
	ID string

	// Score is the similarity under the store's metric (cosine for the
	// reference backend).
	Score float64

	// Metadata is the stored chunk payload. Always populated so callers
	// can render citations without a second lookup.
	Metadata ChunkMetadata
}
