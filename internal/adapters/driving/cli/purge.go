package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/services"
)

var (
	purgeTenant    string
	purgeNamespace string
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every vector in a namespace",
	Long: `Removes all vectors stored in the namespace. Vector IDs are derived
from a chunk's position in the global ingestion sequence, so re-ingesting a
workspace whose file set shrank leaves stale vectors at trailing IDs; purge
before re-ingesting to get a clean partition.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeTenant, "tenant", "", "tenant identifier (required)")
	purgeCmd.Flags().StringVar(&purgeNamespace, "namespace", "", "namespace to purge (required)")
	_ = purgeCmd.MarkFlagRequired("tenant")
	_ = purgeCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	store, err := buildVectorStore(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	defer store.Close()

	orchestrator := services.NewIngestionOrchestrator(nil, store)

	ns := domain.Namespace(purgeNamespace)
	if err := orchestrator.Purge(context.Background(), purgeTenant, ns); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	cmd.Printf("Purged namespace %s\n", ns)
	return nil
}
