package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/htmlgrader/internal/config"
)

//go:embed templates/checks.json templates/htmlgrader.yaml
var templates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter checks file",
		Long: `Init writes a starter checks.json with common selectors for a basic web page.
Edit it to match the assignment being graded.

With --settings-file, a commented .htmlgrader settings file is written as well.

Examples:
  # Create checks.json in the current directory
  htmlgrader init

  # Create the checks file at a specific path
  htmlgrader init -o week1/checks.json

  # Also create .htmlgrader, overwriting existing files
  htmlgrader init --settings-file -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultChecksFile,
		"Output file path for the checks file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")
	cmd.Flags().Bool("settings-file", false,
		"Also write a "+config.DefaultSettingsFile+" settings file next to the checks file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	withSettings, err := cmd.Flags().GetBool("settings-file")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if err := writeTemplate("templates/checks.json", outputPath, force); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created checks file: %s\n", outputPath)

	if withSettings {
		settingsPath := filepath.Join(filepath.Dir(outputPath), config.DefaultSettingsFile)
		if err := writeTemplate("templates/htmlgrader.yaml", settingsPath, force); err != nil {
			return err
		}
		fmt.Fprintf(out, "Created settings file: %s\n", settingsPath)
	}

	fmt.Fprintln(out, "\nRun a check with:")
	fmt.Fprintf(out, "  htmlgrader -c %s -f index.html\n", outputPath)

	return nil
}

// writeTemplate copies an embedded template to path.
func writeTemplate(name, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s (use -f to overwrite)", path)
		}
	}

	content, err := templates.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
