package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nestkeeper/nestkeeper/internal/engine"
	"github.com/nestkeeper/nestkeeper/llm"
)

var (
	enrichCatalogID string
	enrichUserID    string
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Propose templates for a catalog entry via the LLM collaborator",
	Long: `Ask the configured LLM provider for maintenance-task templates covering
a catalog entry (a brand/model/type of appliance or system). The call
is skipped when the entry already has linked templates, so repeated
invocations never incur repeated API cost. Failures are logged as
issues, not returned as errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := GetConfig()

		provider, err := llm.NewProvider(config.LLM)
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		entry, err := s.GetCatalogEntry(cmd.Context(), enrichCatalogID)
		if err != nil {
			return fmt.Errorf("load catalog entry %s: %w", enrichCatalogID, err)
		}

		templatesDir := ""
		if config.Project.TemplatesDir != "" {
			templatesDir = filepath.Join(config.Project.RootDir, config.Project.TemplatesDir)
		}
		enricher := engine.NewEnricher(s, provider, templatesDir, isVerbose())
		created, err := enricher.EnrichCatalogEntry(cmd.Context(), enrichUserID, entry)
		if err != nil {
			return fmt.Errorf("enrich catalog entry %s: %w", enrichCatalogID, err)
		}

		if created == 0 {
			fmt.Println("No templates created (entry already covered, or the lookup failed; check 'nestkeeper issues list').")
			return nil
		}
		fmt.Printf("✓ Created %d template(s) for %s %s (%s)\n", created, entry.Brand, entry.Model, entry.Type)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichCatalogID, "catalog", "", "catalog entry id to enrich")
	enrichCmd.Flags().StringVarP(&enrichUserID, "user", "u", "", "user id to attribute issues to")
	_ = enrichCmd.MarkFlagRequired("catalog")
	_ = enrichCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(enrichCmd)
}
