package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

var (
	searchTechID string
	searchK      int
	searchHybrid bool
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed submission chunks",
	Long: `Embeds the query and returns the most similar indexed chunks.
Use --tech-id to restrict the search to one submission and --hybrid to
mix keyword matching into the ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTechID, "tech-id", "t", "", "restrict to one submission")
	searchCmd.Flags().IntVarP(&searchK, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchHybrid, "hybrid", false, "combine keyword and vector ranking")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("search service not configured, set an embedding provider with 'cnteval config'")
	}

	query := args[0]
	filter := domain.SearchFilter{TechID: searchTechID}

	results, err := retrievalService.Search(cmd.Context(), query, filter, searchK, searchHybrid)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, r.TechID, r.ChunkIndex, r.Score)
		if r.Section != "" {
			cmd.Printf("      Section: %s, pages %v\n", r.Section, r.PageNumbers)
		}
		cmd.Printf("      %s\n", snippetLine(r.Content))
		cmd.Println()
	}
	return nil
}

// snippetLine compresses chunk content into a single preview line.
func snippetLine(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if len(s) > 160 {
		s = s[:160] + "..."
	}
	return s
}
