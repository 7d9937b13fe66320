package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/models"
)

var (
	generateUserID      string
	generateHomeID      string
	generateRoomID      string
	generateTrackableID string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run a task-generation pass for one scope",
	Long: `Run a task-generation pass for a home, a room, or a trackable.

Exactly one of --home, --room, --trackable must be given. The pass is
idempotent: re-running it for an unchanged scope refreshes existing
tasks instead of duplicating them.

Examples:
  nestkeeper generate --user 5f1c... --home 9a2b...
  nestkeeper generate --user 5f1c... --trackable 77de...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, scopeID, err := pickScope()
		if err != nil {
			return err
		}

		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		eng := GetEngine(s)
		report, err := eng.Generate(cmd.Context(), generateUserID, kind, scopeID)
		if err != nil {
			return fmt.Errorf("generate for %s %s: %w", kind, scopeID, err)
		}

		if isJSON() {
			return printJSON(report)
		}
		fmt.Printf("Generation pass for %s %s:\n", kind, scopeID)
		fmt.Printf("  rules considered: %d\n", report.RulesConsidered)
		fmt.Printf("  rules matched:    %d\n", report.RulesMatched)
		fmt.Printf("  tasks created:    %d\n", report.Created)
		fmt.Printf("  tasks refreshed:  %d\n", report.Refreshed)
		if report.Issues > 0 {
			fmt.Printf("  issues logged:    %d (see 'nestkeeper issues list')\n", report.Issues)
		}
		return nil
	},
}

func pickScope() (models.RuleScope, string, error) {
	set := 0
	var kind models.RuleScope
	var id string
	if generateHomeID != "" {
		set++
		kind, id = models.ScopeHome, generateHomeID
	}
	if generateRoomID != "" {
		set++
		kind, id = models.ScopeRoom, generateRoomID
	}
	if generateTrackableID != "" {
		set++
		kind, id = models.ScopeTrackable, generateTrackableID
	}
	if set != 1 {
		return "", "", fmt.Errorf("exactly one of --home, --room, --trackable is required")
	}
	return kind, id, nil
}

func init() {
	generateCmd.Flags().StringVarP(&generateUserID, "user", "u", "", "user id the tasks belong to")
	generateCmd.Flags().StringVar(&generateHomeID, "home", "", "home id to generate for")
	generateCmd.Flags().StringVar(&generateRoomID, "room", "", "room id to generate for")
	generateCmd.Flags().StringVar(&generateTrackableID, "trackable", "", "trackable id to generate for")
	_ = generateCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(generateCmd)
}
