package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/confpatch/internal/engine"
	"github.com/bianoble/confpatch/pkg/confpatch"
)

var (
	applyDryRun   bool
	applyOnly     []string
	applyParallel int
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply manifest overrides to component configuration files",
	Long: `Resolves every enabled component of the manifest for this platform, applies
its overrides to its configuration file and records the result in the
lockfile. Components writing the same file run in manifest order; a failing
component never stops the others. The original content of every rewritten
file is kept in the backup store for 'confpatch restore'.

With --dry-run nothing is written and a diff of each pending change is shown
in verbose mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(applyParallel)
		if err != nil {
			return err
		}

		result, err := client.Apply(cmd.Context(), confpatch.ApplyOptions{
			Only:   applyOnly,
			DryRun: applyDryRun,
		})
		if err != nil {
			return err
		}

		if applyDryRun {
			info("Dry run — no files written.")
		}

		written, unchanged := 0, 0
		for _, r := range result.Results {
			if r.Action == engine.ActionUnchanged {
				unchanged++
				detail("%s %s  %s", actionLabel(string(r.Action)), r.ID, r.Target)
				continue
			}
			written++
			info("  %s %s  %s", actionLabel(string(r.Action)), r.ID, r.Target)
			if applyDryRun && verbose {
				if diff, _, _ := confpatch.Diff(r); diff != "" {
					fmt.Fprintln(stdout, diff)
				}
			}
		}
		for _, e := range result.Errors {
			errorf("%s: %s", e.Component, e.Err)
		}

		info("")
		info("Apply complete: %d changed, %d unchanged, %d errors.", written, unchanged, len(result.Errors))

		if len(result.Errors) > 0 {
			return fmt.Errorf("%d component(s) failed", len(result.Errors))
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show what would change without writing files")
	applyCmd.Flags().StringArrayVar(&applyOnly, "only", nil, "component id glob to apply (repeatable)")
	applyCmd.Flags().IntVar(&applyParallel, "parallel", 0, "maximum target files configured at once (0 = no limit)")
	rootCmd.AddCommand(applyCmd)
}
