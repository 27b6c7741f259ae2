package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration spanedit would use here as YAML, after merging
the user and project config files, --config and SPANEDIT_* variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := workingDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, workDir, nil)
			if err != nil {
				return err
			}

			data, err := cfg.ToYAMLWithHeader("# spanedit resolved configuration")
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
