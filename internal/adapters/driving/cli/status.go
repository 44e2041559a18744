package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index size and configuration state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	stats, err := vectorStore.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	cmd.Println("[Index]")
	cmd.Printf("  Chunks: %d\n", stats.ChunkCount)
	cmd.Printf("  Size:   %s\n", formatBytes(stats.SizeBytes))
	cmd.Println()

	cmd.Println("[Services]")
	cmd.Printf("  Ingest:     %s\n", configuredLabel(ingestService != nil))
	cmd.Printf("  Search:     %s\n", configuredLabel(retrievalService != nil))
	cmd.Printf("  Evaluation: %s\n", configuredLabel(evaluationService != nil))
	cmd.Printf("  Literature: %s\n", configuredLabel(literatureService != nil))
	return nil
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
