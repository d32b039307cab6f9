// Root command: global flags, config loading, and subcommand registration.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mobiclinic/clinicsync/internal/paths"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagBaseURL   string
	flagJSON      bool
)

// configDataDir and configBaseURL hold values loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use them.
var (
	configDataDir string
	configBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "clinicsync",
	Short: "Offline-first cache and sync client for the mobile-clinic backend",
	Long: `Clinicsync keeps a local mirror of clinic entities (patients, routes,
inventory, appointments), queues mutations made while disconnected, and
reconciles the pending queue with the backend once connectivity returns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = v.GetString(cfgKeyDataDir)
		configBaseURL = v.GetString(cfgKeyBaseURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory holding the local store")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend API base URL")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(pullCmd)
}

// resolveConfigDir follows the precedence chain:
// --config-dir flag > CLINICSYNC_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir follows the precedence chain:
// --data-dir flag > config.yaml data_dir > CLINICSYNC_DATA_DIR env > platform default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}
