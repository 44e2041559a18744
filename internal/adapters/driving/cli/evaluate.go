package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

var (
	evaluateCriterion string
	evaluateJSON      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [tech-id]",
	Short: "Run the certification review for a submission",
	Long: `Runs the two-stage certification review against a previously
processed submission. Stage 1 scores novelty and progressiveness,
stage 2 scores field applicability. Each criterion is judged by the
configured LLM against evidence retrieved from the submission's
indexed chunks.

Use --criterion to score a single criterion instead of the full review.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateCriterion, "criterion", "c", "",
		"score one criterion only (novelty, progressiveness, field_applicability)")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "output the verdict as JSON")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured, set embedding and LLM providers with 'cnteval config'")
	}

	techID := args[0]
	ctx := cmd.Context()

	if evaluateCriterion != "" {
		result, err := evaluationService.EvaluateCriterion(ctx, techID, domain.Criterion(evaluateCriterion))
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		if evaluateJSON {
			return printJSON(cmd, result)
		}
		printCriterion(cmd, result)
		return nil
	}

	outcome, err := evaluationService.Evaluate(ctx, techID)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if evaluateJSON {
		return printJSON(cmd, outcome)
	}

	printOutcome(cmd, outcome)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printOutcome(cmd *cobra.Command, outcome domain.EvaluationOutcome) {
	cmd.Printf("Evaluation %s\n", outcome.RunID)
	cmd.Printf("Submission: %s\n", outcome.TechID)
	cmd.Printf("Date:       %s\n", outcome.EvaluatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()

	cmd.Println("[Stage 1: Technology Review]")
	printStage(cmd, outcome.Stage1)
	cmd.Println("[Stage 2: Field Applicability Review]")
	printStage(cmd, outcome.Stage2)

	verdict := "FAIL"
	if outcome.OverallPass {
		verdict = "PASS"
	}
	cmd.Printf("Overall: %.1f/100 - %s\n", outcome.OverallScore, verdict)
	cmd.Println()

	printSummary(cmd, outcome.Summary)
}

func printStage(cmd *cobra.Command, stage domain.StageResult) {
	criteria := make([]domain.Criterion, 0, len(stage.Criteria))
	for c := range stage.Criteria {
		criteria = append(criteria, c)
	}
	sort.Slice(criteria, func(i, j int) bool { return criteria[i] < criteria[j] })

	for _, c := range criteria {
		result := stage.Criteria[c]
		mark := "fail"
		if result.Pass {
			mark = "pass"
		}
		cmd.Printf("  %-20s %.1f/5 (%s) - %s\n", c, result.Score, result.Grade, mark)
	}
	cmd.Printf("  Stage score: %.1f/50, %s\n\n", stage.Score, passLabel(stage.Pass))
}

func printCriterion(cmd *cobra.Command, result domain.CriterionResult) {
	cmd.Printf("Criterion: %s\n", result.Criterion)
	cmd.Printf("Score:     %.1f/5 (%s)\n", result.Score, result.Grade)
	cmd.Printf("Verdict:   %s\n", passLabel(result.Pass))

	if len(result.SubScores) > 0 {
		cmd.Println("\nSub-scores:")
		names := make([]string, 0, len(result.SubScores))
		for name := range result.SubScores {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %-24s %.1f\n", name, result.SubScores[name])
		}
	}

	if len(result.Evidence) > 0 {
		cmd.Println("\nEvidence:")
		for _, ev := range result.Evidence {
			cmd.Printf("  - [%s] %s\n", ev.Type, ev.Content)
			if ev.Location != "" {
				cmd.Printf("    at %s\n", ev.Location)
			}
		}
	}

	if result.Comments != "" {
		cmd.Printf("\nComments:\n%s\n", indent(result.Comments, "  "))
	}
}

func printSummary(cmd *cobra.Command, summary domain.Summary) {
	cmd.Printf("Summary: %s\n", summary.OverallGrade)
	if len(summary.StrongPoints) > 0 {
		cmd.Println("  Strong points:")
		for _, p := range summary.StrongPoints {
			cmd.Printf("    + %s\n", p)
		}
	}
	if len(summary.WeakPoints) > 0 {
		cmd.Println("  Weak points:")
		for _, p := range summary.WeakPoints {
			cmd.Printf("    - %s\n", p)
		}
	}
	if len(summary.Recommendations) > 0 {
		cmd.Println("  Recommendations:")
		for _, r := range summary.Recommendations {
			cmd.Printf("    * %s\n", r)
		}
	}
}

func passLabel(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
