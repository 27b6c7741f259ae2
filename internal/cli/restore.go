package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/spanedit/internal/logging"
	"github.com/yaklabco/spanedit/internal/ui/pretty"
	"github.com/yaklabco/spanedit/pkg/fsutil"
	"github.com/yaklabco/spanedit/pkg/runner"
)

func newRestoreCommand() *cobra.Command {
	var includeVendored bool

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Put back files from their spanedit backups",
		Long: `Replace every selected file that has a sidecar backup
(<file>.spanedit.bak) with the backup, then delete the backup.

Examples:
  spanedit restore                # Restore everything under .
  spanedit restore docs/guide.md  # Restore one file`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args, includeVendored)
		},
	}

	cmd.Flags().BoolVar(&includeVendored, "include-vendored", false, "also restore vendored paths")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string, includeVendored bool) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	files, err := runner.Discover(ctx, runner.Options{
		Paths:           args,
		WorkingDir:      workDir,
		IncludeVendored: includeVendored,
	})
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	restored := 0
	for _, path := range files {
		ok, err := fsutil.Restore(ctx, path)
		if err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
		if ok {
			restored++
			logger.Debug("restored", logging.FieldPath, path)
		}
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	if restored == 0 {
		fmt.Fprintln(out, styles.Dim.Render("No backups found."))
		return nil
	}
	fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("Restored %d %s.", restored, pretty.Plural(restored, "file"))))
	return nil
}
