package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/vset/internal/config"
	"github.com/vvka-141/vset/internal/tui"
	"github.com/vvka-141/vset/internal/tui/wizards"
)

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Interactively create or edit vset.yaml configuration",
	Long: `Launches an interactive wizard to create or edit vset.yaml configuration.

The wizard guides you through:
  1. Database connection setup (host, port, authentication)
  2. Project settings (base URL, listen address, metadata file, timeout)

This command requires an interactive terminal. For non-interactive use,
create vset.yaml manually or use environment variables.

Examples:
  # Create config in current directory
  vset config

  # Create config in a specific project directory
  vset config ./myvocab`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	// Require interactive terminal
	if !tui.IsInteractive() {
		return fmt.Errorf("config command requires an interactive terminal\n" +
			"For non-interactive use, create vset.yaml manually or use environment variables")
	}

	// Check if config already exists
	existingCfg, err := config.Load(targetDir)
	if err == nil && existingCfg != nil {
		fmt.Println("Found existing vset.yaml")
		if !tui.PromptContinue("Overwrite existing configuration?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// Run connection wizard
	connResult, err := wizards.RunConnectionWizard()
	if err != nil {
		return fmt.Errorf("connection wizard failed: %w", err)
	}
	if connResult.Cancelled {
		fmt.Println("Cancelled.")
		return nil
	}

	// Run project settings wizard
	settings, err := wizards.RunSettingsWizard()
	if err != nil {
		return fmt.Errorf("settings wizard failed: %w", err)
	}
	if settings.Cancelled {
		fmt.Println("Cancelled.")
		return nil
	}

	// Save connection first, then layer settings over it
	if err := saveConnectionToConfig(targetDir, &connResult.Config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := settings.Save(targetDir); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("\n✓ Configuration saved to %s/%s\n", targetDir, config.ConfigFileName)
	offerSavePgpass(&connResult.Config)
	return nil
}
