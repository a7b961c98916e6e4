package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/services"
)

var (
	historyTenant    string
	historyNamespace string
	historyLimit     int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past questions and answers for a namespace",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyTenant, "tenant", "", "tenant identifier (required)")
	historyCmd.Flags().StringVar(&historyNamespace, "namespace", "", "namespace, e.g. tenant:org/repo (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	_ = historyCmd.MarkFlagRequired("tenant")
	_ = historyCmd.MarkFlagRequired("namespace")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	history := buildHistory()
	if history == nil {
		return errors.New("interaction log not available")
	}
	defer history.Close()

	engine := services.NewQueryEngine(nil, nil, nil, history)

	records, err := engine.History(context.Background(), historyTenant, domain.Namespace(historyNamespace), historyLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No interactions recorded.")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("[%s]\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("Q: %s\n", rec.Question)
		cmd.Printf("A: %s\n\n", rec.Answer)
	}
	return nil
}
