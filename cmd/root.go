package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nestkeeper/nestkeeper/internal/engine"
	"github.com/nestkeeper/nestkeeper/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nestkeeper",
	Short: "NestKeeper generates recurring home-maintenance tasks.",
	Long: `NestKeeper turns rules about your home, its rooms, and its appliances
into concrete, scheduled maintenance tasks. Import a rule pack, register
your home, and run generate whenever something changes.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.nestkeeper/.nestkeeper.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine-readable JSON output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// GetDatabasePath returns the full path to the sqlite database file.
func GetDatabasePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Data.File)
}

// GetStore opens the sqlite-backed store at the configured path.
func GetStore() (store.Store, error) {
	dbPath := GetDatabasePath()
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dbPath, err)
	}
	return s, nil
}

// GetEngine wires a generation engine on top of the store.
func GetEngine(s store.Store) *engine.Engine {
	config := GetConfig()
	return engine.New(s, engine.Config{
		RuleCacheTTL: time.Duration(config.Engine.RuleCacheTTLSeconds) * time.Second,
		Verbose:      isVerbose(),
	})
}
