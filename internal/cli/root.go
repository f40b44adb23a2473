package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	profileDir string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "quiz-companion",
		Short: "Quiz rendering, local answer ledger, and scoreboard sync for interactive sessions",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&profileDir, "profile-dir", "", "learner profile directory (overrides config)")
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newAggregateCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}
