package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/services"
)

var (
	askTenant    string
	askNamespace string
	askTopK      int
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against an ingested repository",
	Long: `Embeds the question, retrieves the most similar chunks from the
namespace, and synthesizes an answer grounded in them. The namespace must
belong to the tenant; a mismatch is rejected before any provider call.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askTenant, "tenant", "", "tenant identifier (required)")
	askCmd.Flags().StringVar(&askNamespace, "namespace", "", "namespace to query, e.g. tenant:org/repo (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", services.DefaultTopK, "number of chunks to retrieve")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	_ = askCmd.MarkFlagRequired("tenant")
	_ = askCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

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

	llm := buildLLM()
	if llm != nil {
		defer llm.Close()
	}
	history := buildHistory()
	if history != nil {
		defer history.Close()
	}

	engine := services.NewQueryEngine(embedder, store, llm, history)

	answer, err := engine.Ask(context.Background(), askTenant, domain.Namespace(askNamespace), question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Retrieved sources:")
		for _, src := range answer.Sources {
			cmd.Printf("  %s (chunk %d) score %.4f\n", src.Path, src.Index, src.Score)
		}
	}
	return nil
}
