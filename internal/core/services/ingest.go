package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipewise/repokb/internal/chunker"
	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/ports/driven"
	"github.com/pipewise/repokb/internal/core/ports/driving"
	"github.com/pipewise/repokb/internal/discovery"
	"github.com/pipewise/repokb/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestionOrchestrator)(nil)

// DefaultBatchSize is the number of chunks embedded and upserted per
// provider call. Batching amortizes per-call overhead while bounding
// worst-case payload size.
const DefaultBatchSize = 64

// IngestionOrchestrator composes discovery, chunking, embedding and
// vector upserts into one ingestion run.
//
// Batches are processed sequentially in discovery order, so vector IDs
// are stable across repeated ingestions of an unchanged file set.
// Concurrent ingestions of the same namespace are a caller-side hazard;
// the orchestrator itself keeps no state between calls.
type IngestionOrchestrator struct {
	discoverer *discovery.Discoverer
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	batchSize  int
}

// IngestOption configures the orchestrator.
type IngestOption func(*IngestionOrchestrator)

// WithBatchSize sets the embedding/upsert batch size.
func WithBatchSize(size int) IngestOption {
	return func(o *IngestionOrchestrator) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// WithDiscoverer replaces the default file discoverer.
func WithDiscoverer(d *discovery.Discoverer) IngestOption {
	return func(o *IngestionOrchestrator) {
		if d != nil {
			o.discoverer = d
		}
	}
}

// WithChunker replaces the default chunker.
func WithChunker(c *chunker.Chunker) IngestOption {
	return func(o *IngestionOrchestrator) {
		if c != nil {
			o.chunker = c
		}
	}
}

// NewIngestionOrchestrator creates an orchestrator writing through the
// given embedding service and vector store.
func NewIngestionOrchestrator(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	opts ...IngestOption,
) *IngestionOrchestrator {
	o := &IngestionOrchestrator{
		discoverer: discovery.New(),
		chunker:    chunker.New(),
		embedder:   embedder,
		store:      store,
		batchSize:  DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Ingest turns the workspace into vectors in the tenant's namespace.
//
// A read failure on one file is logged and that file contributes zero
// chunks. A batch-level embedding or upsert failure aborts the call;
// the returned stats then reflect what was durably written before the
// failing batch, and there is no rollback of earlier batches.
func (o *IngestionOrchestrator) Ingest(ctx context.Context, workspaceRoot, tenantID, repoSlug string) (domain.IngestStats, error) {
	ns, err := domain.DeriveNamespace(tenantID, repoSlug)
	if err != nil {
		return domain.IngestStats{}, err
	}
	stats := domain.IngestStats{Namespace: ns}

	if workspaceRoot == "" {
		return stats, fmt.Errorf("%w: workspace root is required", domain.ErrInvalidInput)
	}
	if o.embedder == nil {
		return stats, fmt.Errorf("%w: embedding service", domain.ErrNotConfigured)
	}
	if o.store == nil {
		return stats, fmt.Errorf("%w: vector store", domain.ErrNotConfigured)
	}

	logger.Section("Ingestion")
	logger.Info("Namespace: %s, workspace: %s", ns, workspaceRoot)

	paths, err := o.discoverer.Discover(workspaceRoot)
	if err != nil {
		return stats, fmt.Errorf("discover files: %w", err)
	}
	stats.FileCount = len(paths)

	chunks := o.chunkFiles(workspaceRoot, paths, tenantID, repoSlug)
	stats.ChunkCount = len(chunks)
	logger.Info("Discovered %d files, %d chunks", stats.FileCount, stats.ChunkCount)

	for start := 0; start < len(chunks); start += o.batchSize {
		end := start + o.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := o.processBatch(ctx, ns, batch, start); err != nil {
			batchIdx := start / o.batchSize
			return stats, fmt.Errorf("namespace %s batch %d (chunks %d-%d): %w",
				ns, batchIdx, start, end-1, err)
		}
		stats.Upserted += len(batch)
		logger.Debug("Batch %d done, %d/%d vectors upserted", start/o.batchSize, stats.Upserted, stats.ChunkCount)
	}

	return stats, nil
}

// Purge removes every vector in the namespace. The tenant must own the
// namespace.
func (o *IngestionOrchestrator) Purge(ctx context.Context, tenantID string, ns domain.Namespace) error {
	if !ns.AuthorizedFor(tenantID) {
		logger.Security("Tenant %q denied purge of namespace %q", tenantID, ns)
		return fmt.Errorf("%w: tenant %q cannot access namespace %q", domain.ErrForbidden, tenantID, ns)
	}
	if o.store == nil {
		return fmt.Errorf("%w: vector store", domain.ErrNotConfigured)
	}
	return o.store.DeleteNamespace(ctx, ns)
}

// chunkFiles reads and chunks every discovered file in discovery order,
// flattening the result into one global index-ordered list.
func (o *IngestionOrchestrator) chunkFiles(root string, paths []string, tenantID, repoSlug string) []domain.Chunk {
	var chunks []domain.Chunk

	for _, rel := range paths {
		text, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			logger.Warn("Skipping unreadable file %s: %v", rel, err)
			continue
		}

		for idx, window := range o.chunker.Split(string(text)) {
			chunks = append(chunks, domain.Chunk{
				Path:     rel,
				Index:    idx,
				Text:     window,
				TenantID: tenantID,
				RepoSlug: repoSlug,
			})
		}
	}

	return chunks
}

// processBatch embeds one batch and upserts the resulting records.
// globalStart is the batch's offset in the global chunk sequence; the
// record IDs are derived from it.
func (o *IngestionOrchestrator) processBatch(ctx context.Context, ns domain.Namespace, batch []domain.Chunk, globalStart int) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	records := make([]domain.VectorRecord, len(batch))
	for i, c := range batch {
		records[i] = domain.VectorRecord{
			ID:     domain.VectorID(ns, globalStart+i),
			Values: vectors[i],
			Metadata: domain.ChunkMetadata{
				Path:     c.Path,
				Index:    c.Index,
				Text:     c.Text,
				RepoSlug: c.RepoSlug,
				TenantID: c.TenantID,
			},
		}
	}

	if err := o.store.Upsert(ctx, ns, records); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
