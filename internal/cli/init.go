package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/spanedit/internal/configloader"
	"github.com/yaklabco/spanedit/internal/logging"
	"github.com/yaklabco/spanedit/pkg/config"
)

type initFlags struct {
	force    bool
	examples bool
	format   string
	output   string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new spanedit configuration file",
		Long: `Create a commented .spanedit.yml in the current directory. Add rewrite
rules to its rules list, or start from the sample rules with --examples.

Examples:
  spanedit init                      Create .spanedit.yml with no rules
  spanedit init --examples           Include sample rules
  spanedit init --format json        Create .spanedit.jsonc instead
  spanedit init --output ci.yml      Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.examples, "examples", false, "Include sample rules")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .spanedit.yml or .spanedit.jsonc)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.ErrOrStderr())

	if flags.format != "yaml" && flags.format != formatJSON {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".spanedit.yml"
		if flags.format == formatJSON {
			outputPath = ".spanedit.jsonc"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Format:   flags.format,
		Examples: flags.examples,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(absPath, content, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.examples {
		logger.Info("sample rules included; run 'spanedit rules' to list them")
	}
	logger.Info("try it with 'spanedit rewrite --dry-run'")

	return nil
}
