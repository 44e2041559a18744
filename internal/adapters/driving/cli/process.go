package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/parser"
)

var processJSON bool

var processCmd = &cobra.Command{
	Use:   "process [file.json...]",
	Short: "Index parsed submission documents",
	Long: `Chunks, embeds and indexes one or more parsed submission documents.
Each file is a JSON document with a tech_id and per-page text. Chunks
previously indexed for the same submission are replaced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [tech-id]",
	Short: "Remove a submission from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	processCmd.Flags().BoolVar(&processJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured, set an embedding provider with 'cnteval config'")
	}

	ctx := cmd.Context()
	var failed int

	for _, path := range args {
		doc, err := parser.LoadFile(path)
		if err != nil {
			cmd.PrintErrf("Skipping %s: %v\n", path, err)
			failed++
			continue
		}

		report, err := ingestService.Process(ctx, doc)
		if err != nil {
			cmd.PrintErrf("Processing %s failed: %v\n", path, err)
			failed++
			continue
		}

		if processJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			cmd.Println(string(data))
			continue
		}

		cmd.Printf("Processed %s (submission %s)\n", path, report.TechID)
		cmd.Printf("  Chunks:   %d\n", report.ChunkCount)
		cmd.Printf("  Embedded: %d\n", report.EmbeddedCount)
		if report.FailedCount > 0 {
			cmd.Printf("  Failed:   %d\n", report.FailedCount)
		}
		cmd.Printf("  Indexed:  %d\n", report.IndexedCount)
		if report.ArchiveURI != "" {
			cmd.Printf("  Archived: %s\n", report.ArchiveURI)
		}
		cmd.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured, set an embedding provider with 'cnteval config'")
	}

	techID := args[0]
	n, err := ingestService.Delete(cmd.Context(), techID)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	cmd.Printf("Removed %d chunks for submission %s.\n", n, techID)
	return nil
}
