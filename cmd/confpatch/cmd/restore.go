package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bianoble/confpatch/pkg/confpatch"
)

var restoreDryRun bool

var restoreCmd = &cobra.Command{
	Use:   "restore [component-id...]",
	Short: "Restore configuration files from the backup store",
	Long: `Writes the content a file had before confpatch first configured it back to
the file, and removes the file's components from the lockfile. Naming a
component restores its whole file, which also undoes every other component
sharing that file. Without arguments every recorded file is restored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(0)
		if err != nil {
			return err
		}

		result, err := client.Restore(cmd.Context(), confpatch.RestoreOptions{
			IDs:    args,
			DryRun: restoreDryRun,
		})
		if err != nil {
			return err
		}

		if restoreDryRun {
			info("Dry run — no files written.")
		}
		for _, f := range result.Restored {
			info("  %s %s  (%s)", actionLabel(f.Action), f.Path, strings.Join(f.IDs, ", "))
		}
		for _, e := range result.Errors {
			errorf("%s: %s", e.Component, e.Err)
		}

		if len(result.Errors) > 0 {
			return fmt.Errorf("%d file(s) could not be restored", len(result.Errors))
		}
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "show what would be restored without writing files")
	rootCmd.AddCommand(restoreCmd)
}
