package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize NestKeeper in the current directory",
	Long: `Initialize NestKeeper in the current directory.

This creates the .nestkeeper directory with:
  • nestkeeper.db - SQLite database for rules, templates and tasks
  • .nestkeeper.yaml - starter configuration
  • templates/ - optional prompt overrides for enrichment

Run this before importing rule packs or generating tasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig()
		rootDir := config.Project.RootDir

		dbPath := GetDatabasePath()
		if _, err := os.Stat(dbPath); err == nil {
			fmt.Println("✓ NestKeeper already initialized in this directory")
			return nil
		}

		if err := os.MkdirAll(rootDir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", rootDir, err)
		}
		if config.Project.TemplatesDir != "" {
			templatesPath := filepath.Join(rootDir, config.Project.TemplatesDir)
			if err := os.MkdirAll(templatesPath, 0755); err != nil {
				return fmt.Errorf("create %s: %w", templatesPath, err)
			}
		}

		// Opening the store creates the schema.
		s, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		defer func() { _ = s.Close() }()

		configPath := filepath.Join(rootDir, ".nestkeeper.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			starter := `# NestKeeper configuration
project:
  rootDir: .nestkeeper
  templatesDir: templates
data:
  file: nestkeeper.db
engine:
  ruleCacheTtlSeconds: 10
llm:
  provider: openai
  modelName: gpt-4o-mini
  # apiKey: set NESTKEEPER_LLM_APIKEY or OPENAI_API_KEY in .env instead
`
			if err := os.WriteFile(configPath, []byte(starter), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write starter config: %v\n", err)
			}
		}

		gitignorePath := filepath.Join(rootDir, ".gitignore")
		gitignoreContent := `# NestKeeper local database
nestkeeper.db
nestkeeper.db-journal
nestkeeper.db-wal
nestkeeper.db-shm
`
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create .gitignore: %v\n", err)
		}

		fmt.Println("✓ NestKeeper initialized")
		fmt.Println("")
		fmt.Println("Created:")
		fmt.Printf("  • %s\n", dbPath)
		fmt.Printf("  • %s\n", configPath)
		fmt.Println("")
		fmt.Println("Next steps:")
		fmt.Println("  nestkeeper rules import rules.yaml")
		fmt.Println("  nestkeeper add home --user <user-id> --name \"My House\"")
		fmt.Println("  nestkeeper generate --user <user-id> --home <home-id>")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
