package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/vset/internal/scaffold"
	"github.com/vvka-141/vset/internal/tui"
	"github.com/vvka-141/vset/internal/tui/wizards"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new vset project",
	Long: `Initialize a vset project into the specified directory.

The init command initializes a vset project with:
- vset.yaml project configuration
- valuesets.yaml metadata side-file
- data/ directory with an example CSV ValueSet
- README with usage instructions

Target directory must be empty or non-existent.

Examples:
  vset init .                    # Initialize in current directory
  vset init ./myvocab            # Initialize in ./myvocab
  vset init ./myvocab --wizard   # Interactive setup (connection wizard)

Use 'vset init --list' to see available templates.`,
	Args: cobra.MinimumNArgs(0),
	RunE: runInit,
}

var (
	initTemplate string
	initList     bool
	initWizard   bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "basic", "Template to use")
	initCmd.Flags().BoolVar(&initList, "list", false, "List available templates")
	initCmd.Flags().BoolVar(&initWizard, "wizard", false,
		"Run the interactive setup wizard (template, connection, project settings)")

	_ = initCmd.RegisterFlagCompletionFunc("template", completeTemplateNames)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Handle --list flag
	if initList {
		templates, err := scaffold.ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Available templates:")
		for _, t := range templates {
			fmt.Fprintf(os.Stderr, "  %s\n", t)
		}
		return nil
	}

	// Require target path if not listing
	if len(args) == 0 {
		return fmt.Errorf("target path required\n\nUsage: vset init <target_path> [flags]\n\nExamples:\n  vset init .           # Current directory\n  vset init ./myvocab   # Subdirectory\n\nUse 'vset init --list' to see available templates")
	}

	targetPath := args[0]
	verbose := getVerboseFlag(cmd)

	if initWizard {
		return runInitWizard(targetPath, verbose)
	}

	return scaffoldProject(targetPath, initTemplate, verbose)
}

// runInitWizard drives the interactive init flow: template selection,
// scaffolding, then optional connection and project settings setup.
func runInitWizard(targetPath string, verbose bool) error {
	if !tui.IsInteractive() {
		return fmt.Errorf("--wizard requires an interactive terminal\n" +
			"For non-interactive use, run 'vset init <target_path>' and edit vset.yaml")
	}

	result, err := wizards.RunInitWizard(targetPath)
	if err != nil {
		return fmt.Errorf("init wizard failed: %w", err)
	}
	if result.Cancelled {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return nil
	}

	if err := scaffoldProject(targetPath, result.Template, verbose); err != nil {
		return err
	}

	if result.SetupConfig && !result.ConnResult.Cancelled {
		if err := saveConnectionToConfig(targetPath, &result.ConnResult.Config); err != nil {
			return fmt.Errorf("failed to save connection to vset.yaml: %w", err)
		}
		if !result.SettingsResult.Cancelled {
			if err := result.SettingsResult.Save(targetPath); err != nil {
				return fmt.Errorf("failed to save project settings: %w", err)
			}
		}
		offerSavePgpass(&result.ConnResult.Config)
	}

	return nil
}

// scaffoldProject creates the project from a template and prints the result tree.
func scaffoldProject(targetPath, template string, verbose bool) error {
	// Determine project name from target path
	projectName := filepath.Base(targetPath)
	if projectName == "." || projectName == ".." {
		cwd, err := os.Getwd()
		if err == nil {
			projectName = filepath.Base(cwd)
		} else {
			projectName = "project"
		}
	}

	// Validate template
	templates, err := scaffold.ListTemplates()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	validTemplate := false
	for _, t := range templates {
		if t == template {
			validTemplate = true
			break
		}
	}

	if !validTemplate {
		return fmt.Errorf("invalid template '%s'. Available templates: %v\n\nUse 'vset init --list' to see available templates", template, templates)
	}

	scaffolder := scaffold.NewScaffolder(verbose)

	if err := scaffolder.CreateProject(projectName, template, targetPath); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	// Display file tree
	tree, err := scaffold.BuildFileTree(targetPath)
	if err != nil {
		// Non-fatal - just skip tree display
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized successfully in '%s' using template '%s'\n\n", targetPath, template)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized successfully using template '%s'\n\n", template)
		fmt.Fprintln(os.Stderr, "Created structure:")
		fmt.Fprint(os.Stderr, tree)
	}

	// Next steps
	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(os.Stderr, "  vset ingest data/example.csv --database myvocab")
	fmt.Fprintln(os.Stderr, "  # Then serve it:")
	fmt.Fprintln(os.Stderr, "  vset serve --database myvocab")

	return nil
}
