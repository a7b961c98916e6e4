package domain

// SourceFile is one text-bearing file discovered in a workspace.
// Produced by the discoverer, consumed once by the chunker, and not
// retained afterwards.
type SourceFile struct {
	// Path is the slash-separated path relative to the workspace root.
	Path string

	// Text is the full file content.
	Text string
}

// Chunk is one overlapping window of a source file's text.
type Chunk struct {
	// Path is the relative path of the file this chunk came from.
	Path string

	// Index is the zero-based sequence number within the file.
	// Ordering follows byte offset ordering.
	Index int

	// Text is the chunk content.
	Text string

	// TenantID is the owning tenant.
	TenantID string

	// RepoSlug identifies the repository within the tenant.
	RepoSlug string
}

// IngestStats summarises one ingestion run.
type IngestStats struct {
	// Namespace is the partition the run wrote into.
	Namespace Namespace `json:"namespace"`

	// FileCount is the number of eligible files discovered.
	FileCount int `json:"fileCount"`

	// ChunkCount is the number of chunks produced across all files.
	ChunkCount int `json:"chunkCount"`

	// Upserted is the number of vectors durably written. On a partial
	// ingestion this counts only the batches that completed before the
	// failing one.
	Upserted int `json:"upserted"`
}
