package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bianoble/confpatch/internal/logging"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	manifestPath string
	valuesFiles  []string
	lockfilePath string
	installRoot  string
	platformID   string
	varFlags     []string
	envFile      string
	backupDir    string
	logLevel     string
	verbose      bool
	quiet        bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "confpatch",
	Short: "Apply configuration overrides to installed components",
	Long: `confpatch applies user-entered overrides, addressed by flat key paths such as
"AppSettings.Triggers[0].Type", to the JSON and INI configuration files of
installed components. Components and their defaults come from a manifest;
every apply is recorded in a lockfile so drift can be detected and the
original files restored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupOutput()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "confpatch %s\n", version)
		fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		fmt.Fprintf(stdout, "  built:   %s\n", date)
		fmt.Fprintf(stdout, "  manifest: v1\n")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&manifestPath, "manifest", "confpatch.yaml", "path to the component manifest")
	pf.StringArrayVar(&valuesFiles, "values", nil, "values file layered on the manifest (repeatable)")
	pf.StringVar(&lockfilePath, "lockfile", "confpatch.lock", "path to lockfile")
	pf.StringVar(&installRoot, "install-root", "", "install root (overrides the manifest)")
	pf.StringVar(&platformID, "platform", "", "platform id such as win-x64 or linux-arm64 (default: detected)")
	pf.StringArrayVar(&varFlags, "var", nil, "template variable key=value (repeatable)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file of template variables")
	pf.StringVar(&backupDir, "backup-dir", "", "backup store directory (default: ~/.local/state/confpatch)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	pf.BoolVar(&verbose, "verbose", false, "detailed output")
	pf.BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// setupOutput applies the color and logging flags.
func setupOutput() {
	if noColor {
		color.NoColor = true
	}

	cfg := logging.DefaultConfig()
	cfg.Output = stderr
	cfg.NoColor = color.NoColor
	switch {
	case logLevel != "":
		cfg.Level = logging.ParseLevel(logLevel)
	case verbose:
		cfg.Level = logging.InfoLevel
	case quiet:
		cfg.Level = logging.ErrorLevel
	}
	logging.Init(cfg)
}

// Execute runs the root command. An interrupt cancels the components that
// have not started yet.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		return err
	}
	return nil
}
