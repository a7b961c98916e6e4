// Package cli provides the cobra command tree for repokb.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	embeddingopenai "github.com/pipewise/repokb/internal/adapters/driven/embedding/openai"
	historysqlite "github.com/pipewise/repokb/internal/adapters/driven/history/sqlite"
	llmopenai "github.com/pipewise/repokb/internal/adapters/driven/llm/openai"
	vectormemory "github.com/pipewise/repokb/internal/adapters/driven/vectorstore/memory"
	vectorqdrant "github.com/pipewise/repokb/internal/adapters/driven/vectorstore/qdrant"
	"github.com/pipewise/repokb/internal/config"
	"github.com/pipewise/repokb/internal/core/ports/driven"
	"github.com/pipewise/repokb/internal/logger"
)

var (
	configPath  string
	verboseFlag bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "repokb",
	Short: "Repository knowledge base",
	Long: `repokb turns a source-code repository into a queryable knowledge base.
It discovers text-bearing files, splits them into overlapping chunks, embeds
them, and stores them in a tenant-scoped partition of a vector index.
Questions are answered from the most relevant retrieved chunks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verboseFlag)

		path := configPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				path = filepath.Join(home, ".repokb", "config.toml")
			}
		}

		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.repokb/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose pipeline logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildEmbedder constructs the embedding service from configuration.
func buildEmbedder() (driven.EmbeddingService, error) {
	return embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
}

// buildVectorStore selects the configured vector backend: Qdrant when
// a URL is set, the in-memory store otherwise. The fallback notice goes
// to errw unconditionally: in-memory data dies with the process, so a
// cross-command workflow against it must fail loudly, not silently.
func buildVectorStore(errw io.Writer) (driven.VectorStore, error) {
	if cfg.Vector.URL == "" {
		fmt.Fprintln(errw, "Warning: no vector store URL configured, using an in-memory backend; ingested data will not survive this command")
		return vectormemory.NewStore(), nil
	}
	return vectorqdrant.NewStore(vectorqdrant.Config{
		URL:        cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey,
		Collection: cfg.Vector.Collection,
	})
}

// buildLLM constructs the synthesis model, or nil when unconfigured.
// The query engine reports ErrNotConfigured on first use.
func buildLLM() driven.LLMService {
	if cfg.LLM.APIKey == "" {
		return nil
	}
	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		logger.Warn("LLM service unavailable: %v", err)
		return nil
	}
	return llm
}

// buildHistory opens the interaction log. History is best-effort, so a
// failure to open it degrades to nil rather than failing the command.
func buildHistory() driven.InteractionStore {
	store, err := historysqlite.NewStore(cfg.History.DataDir)
	if err != nil {
		logger.Warn("Interaction log unavailable: %v", err)
		return nil
	}
	return store
}
