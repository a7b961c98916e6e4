package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipewise/repokb/internal/chunker"
	"github.com/pipewise/repokb/internal/core/services"
	"github.com/pipewise/repokb/internal/discovery"
)

var (
	ingestTenant string
	ingestRepo   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [workspace]",
	Short: "Ingest a materialized repository workspace",
	Long: `Discovers text-bearing files under the workspace, splits them into
overlapping chunks, embeds each chunk and upserts the vectors into the
tenant's namespace of the vector store.

A batch-level failure aborts the run; the printed counts then reflect what
was durably written before the failing batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTenant, "tenant", "", "tenant identifier (required)")
	ingestCmd.Flags().StringVar(&ingestRepo, "repo", "", "repository slug, e.g. org/name (required)")
	_ = ingestCmd.MarkFlagRequired("tenant")
	_ = ingestCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	workspace := args[0]

	embedder, err := buildEmbedder()
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	defer embedder.Close()

	store, err := buildVectorStore(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	defer store.Close()

	orchestrator := services.NewIngestionOrchestrator(
		embedder,
		store,
		services.WithBatchSize(cfg.Ingest.BatchSize),
		services.WithChunker(chunker.New(
			chunker.WithSize(cfg.Ingest.ChunkSize),
			chunker.WithOverlap(cfg.Ingest.ChunkOverlap),
		)),
		services.WithDiscoverer(discovery.New(
			discovery.WithAllowedExtensions(cfg.Ingest.AllowedExtensions),
			discovery.WithDenyPatterns(cfg.Ingest.DenyPatterns),
		)),
	)

	stats, err := orchestrator.Ingest(context.Background(), workspace, ingestTenant, ingestRepo)
	if err != nil {
		if stats.Upserted > 0 {
			cmd.PrintErrf("Partial ingestion: %d of %d chunks upserted before failure\n",
				stats.Upserted, stats.ChunkCount)
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Namespace: %s\n", stats.Namespace)
	cmd.Printf("Files:     %d\n", stats.FileCount)
	cmd.Printf("Chunks:    %d\n", stats.ChunkCount)
	cmd.Printf("Upserted:  %d\n", stats.Upserted)
	return nil
}
