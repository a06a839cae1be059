package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bianoble/confpatch/internal/cache"
	"github.com/bianoble/confpatch/internal/lock"
	"github.com/bianoble/confpatch/internal/manifest"
	"github.com/bianoble/confpatch/internal/platform"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the confpatch setup",
	Long: `Displays the confpatch version, the manifest, values and lockfile paths, the
platform components resolve for, the backup store directory and size, and
a summary of the manifest and lockfile when they exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()

		plat := platformID
		if plat == "" {
			plat = platform.Detect()
		}
		dir := backupDir
		if dir == "" {
			dir = cache.DefaultDir()
		}

		fmt.Fprintf(stdout, "confpatch %s\n", version)
		fmt.Fprintf(stdout, "  platform:      %s (%s)\n", plat, platform.Describe(plat))
		fmt.Fprintf(stdout, "  manifest:      %s\n", manifestPath)
		for _, v := range valuesFiles {
			fmt.Fprintf(stdout, "  values:        %s\n", v)
		}
		fmt.Fprintf(stdout, "  lockfile:      %s\n", lockfilePath)
		fmt.Fprintf(stdout, "  backup dir:    %s\n", dir)

		var size int64
		if exists, _ := afero.DirExists(fs, dir); exists {
			if b, err := cache.New(fs, dir); err == nil {
				size, _ = b.Size()
			}
		}
		fmt.Fprintf(stdout, "  backup size:   %s\n", humanSize(size))

		if m, err := manifest.LoadLayered(fs, manifestPath, valuesFiles); err == nil {
			enabled := 0
			for _, c := range m.Components {
				if c.Enabled() {
					enabled++
				}
			}
			root := m.InstallRoot
			if installRoot != "" {
				root = installRoot
			}
			fmt.Fprintf(stdout, "  install root:  %s\n", root)
			fmt.Fprintf(stdout, "  components:    %d (%d enabled)\n", len(m.Components), enabled)
		} else {
			detail("manifest: %v", err)
		}

		if lf, err := lock.Load(fs, lockfilePath); err == nil {
			fmt.Fprintf(stdout, "  configured:    %d component(s)\n", len(lf.Components))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
