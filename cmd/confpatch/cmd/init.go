package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default confpatch.yaml scaffold.
const initTemplate = `# confpatch manifest
version: 1

# Components are installed below install_root/<folder>/, where the folder
# defaults to the download file name cut at the first '-'
# (HuloopScheduler-win-x64.zip installs to HuloopScheduler/).
install_root: /opt/huloop

# Template variables for values and targets: "{{ .env }}".
# --env-file and --var override them.
variables:
  env: production

components:
  - id: scheduler
    name: Scheduler
    download_url: https://example.com/latest/HuloopScheduler-win-x64.zip
    format: json            # json | ini
    mode: patch             # patch keeps unrelated keys; overwrite replaces the file
    target: appsettings.json
    # platforms:            # per-platform target overrides
    #   linux-x64:
    #     target: config/appsettings.json
    # allow_comments: true  # accept comments in the JSON target

    # Defaults; each leaf becomes an overridable key path.
    configuration:
      Logging:
        Level: Information
      AppSettings:
        Triggers:
          - Type: Cron

    # Overrides by key path. A blank value leaves the key untouched.
    values:
      AppSettings.Triggers[0].Type: Cron
      Logging.Level: ""

  # - id: bot
  #   format: ini
  #   target: bot.ini
  #   prefill: false        # only apply 'values'
  #   values:
  #     Port: 9000
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter confpatch.yaml manifest",
	Long: `Creates a confpatch.yaml file in the current directory with a commented
template showing a JSON component and an INI alternative.

Use --force to overwrite an existing manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := manifestPath
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the file to list your components and values")
		info("  2. Run 'confpatch show' to review the resolved values")
		info("  3. Run 'confpatch apply' to configure the components")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing manifest")
	rootCmd.AddCommand(initCmd)
}
