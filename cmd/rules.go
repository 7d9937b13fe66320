package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/internal/rules"
)

// rulesCmd groups rule-pack management subcommands.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage generation rules",
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <pack.yaml>",
	Short: "Import a YAML rule pack",
	Long: `Import a YAML rule pack. Each rule is upserted by its stable key, so
re-importing an edited pack replaces earlier versions of the same rules.
Malformed packs (unknown operators, duplicate keys, missing template
titles) are rejected wholesale before anything is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open rule pack: %w", err)
		}
		defer func() { _ = f.Close() }()

		pack, err := rules.LoadPack(f)
		if err != nil {
			return fmt.Errorf("load rule pack %s: %w", args[0], err)
		}

		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		for i := range pack.Rules {
			if err := s.ReplaceRule(cmd.Context(), &pack.Rules[i]); err != nil {
				return fmt.Errorf("import rule %s: %w", pack.Rules[i].Key, err)
			}
		}

		fmt.Printf("✓ Imported %d rule(s) from %s\n", len(pack.Rules), args[0])
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		all, err := s.ListRules(cmd.Context())
		if err != nil {
			return fmt.Errorf("list rules: %w", err)
		}

		if isJSON() {
			return printJSON(all)
		}
		if len(all) == 0 {
			fmt.Println("No rules stored. Import a pack with 'nestkeeper rules import'.")
			return nil
		}
		for _, r := range all {
			state := "enabled"
			if !r.Enabled {
				state = "disabled"
			}
			fmt.Printf("%-40s %-10s %-9s %d condition(s)  -> %q\n",
				r.Key, r.Scope, state, len(r.Conditions), r.TemplateSeed.Title)
		}
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rootCmd.AddCommand(rulesCmd)
}
