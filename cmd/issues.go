package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/models"
)

var issuesStatus string

// issuesCmd groups generation-issue subcommands.
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Inspect generation issues",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generation issues",
	Long: `List issues logged during generation passes. Issues record non-fatal
per-rule failures (bad template seeds, upsert errors, coverage gaps,
failed enrichment calls); they never abort a pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.IssueStatus(issuesStatus)
		switch status {
		case models.IssueOpen, models.IssueResolved, models.IssueIgnored:
		default:
			return fmt.Errorf("invalid status %q (want open, resolved or ignored)", issuesStatus)
		}

		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		issues, err := s.ListIssues(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("list issues: %w", err)
		}

		if isJSON() {
			return printJSON(issues)
		}
		if len(issues) == 0 {
			fmt.Printf("No %s issues.\n", status)
			return nil
		}
		for _, iss := range issues {
			fmt.Printf("[%s] %s  %s\n", iss.CreatedAt.Format("2006-01-02 15:04"), iss.Code, iss.Message)
			if isVerbose() && iss.DebugPayload != "" {
				fmt.Printf("    debug: %s\n", iss.DebugPayload)
			}
		}
		return nil
	},
}

func init() {
	issuesListCmd.Flags().StringVar(&issuesStatus, "status", "open", "filter by status (open, resolved, ignored)")
	issuesCmd.AddCommand(issuesListCmd)
	rootCmd.AddCommand(issuesCmd)
}
