package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

var (
	literatureTarget string
	literatureLimit  int
	literatureJSON   bool
)

var literatureCmd = &cobra.Command{
	Use:   "literature [query]",
	Short: "Search external literature for prior art",
	Long: `Queries the literature gateway for prior art related to a
technology. Collections: papers (ARTI), patents (PATENT), reports
(REPORT) and trend analyses (ATT).`,
	Args: cobra.ExactArgs(1),
	RunE: runLiterature,
}

func init() {
	literatureCmd.Flags().StringVarP(&literatureTarget, "target", "t", "papers",
		"collection to search (papers, patents, reports, trends)")
	literatureCmd.Flags().IntVarP(&literatureLimit, "limit", "n", 10, "maximum number of results")
	literatureCmd.Flags().BoolVar(&literatureJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(literatureCmd)
}

// literatureTargets maps the flag spelling to gateway collections.
var literatureTargets = map[string]driven.LiteratureTarget{
	"papers":  driven.TargetPapers,
	"patents": driven.TargetPatents,
	"reports": driven.TargetReports,
	"trends":  driven.TargetTrends,
}

func runLiterature(cmd *cobra.Command, args []string) error {
	if literatureService == nil {
		return errors.New("literature gateway not configured, set credentials with 'cnteval config'")
	}

	target, ok := literatureTargets[strings.ToLower(literatureTarget)]
	if !ok {
		return fmt.Errorf("unknown target %q (papers, patents, reports, trends)", literatureTarget)
	}

	hits, err := literatureService.Search(cmd.Context(), target, args[0], literatureLimit)
	if err != nil {
		return fmt.Errorf("literature search failed: %w", err)
	}

	if literatureJSON {
		return printJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n\n", literatureTarget)
	for i, hit := range hits {
		cmd.Printf("  [%d] %s", i+1, hit.Title)
		if hit.Year != "" {
			cmd.Printf(" (%s)", hit.Year)
		}
		cmd.Println()
		if hit.Authors != "" {
			cmd.Printf("      %s\n", hit.Authors)
		}
		if hit.Abstract != "" {
			cmd.Printf("      %s\n", snippetLine(hit.Abstract))
		}
		cmd.Println()
	}
	return nil
}
