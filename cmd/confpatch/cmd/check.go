package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that configured files match the lockfile",
	Long: `Hashes every configured file and compares it against the lockfile.
Reports any drift (files changed or missing).
Exit 0 if everything matches; exit non-zero on drift. Suitable for CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(0)
		if err != nil {
			return err
		}

		result, err := client.Check(cmd.Context())
		if err != nil {
			return err
		}

		if result.Clean {
			info("All files match the lockfile.")
			return nil
		}

		for _, d := range result.Drifted {
			info("  %s %s  (%s)", actionLabel("drifted"), d.Path, strings.Join(d.IDs, ", "))
			detail("expected: %s", d.Expected)
			detail("actual:   %s", d.Actual)
		}
		for _, m := range result.Missing {
			info("  %s %s", actionLabel("missing"), m)
		}

		total := len(result.Drifted) + len(result.Missing)
		return fmt.Errorf("check failed: %d file(s) out of sync", total)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
