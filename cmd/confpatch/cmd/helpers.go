package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/bianoble/confpatch/internal/engine"
	"github.com/bianoble/confpatch/internal/transform"
	"github.com/bianoble/confpatch/pkg/confpatch"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// newClient builds a library client from the global flags.
func newClient(parallelism int) (*confpatch.Client, error) {
	vars, err := transform.ParseVarFlags(varFlags)
	if err != nil {
		return nil, err
	}
	return confpatch.New(confpatch.Options{
		ManifestPath: manifestPath,
		ValuesFiles:  valuesFiles,
		LockfilePath: lockfilePath,
		InstallRoot:  installRoot,
		Platform:     platformID,
		Vars:         vars,
		EnvFile:      envFile,
		BackupDir:    backupDir,
		Parallelism:  parallelism,
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Fprintf(stdout, "  "+format+"\n", args...)
	}
}

// warnf prints a warning to stderr unless quiet mode is active.
func warnf(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stderr, color.YellowString("warning: ")+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(stderr, color.RedString("error: ")+format+"\n", args...)
}

// actionLabel pads and colors a result action for aligned output.
func actionLabel(action string) string {
	label := fmt.Sprintf("%-13s", action)
	switch action {
	case string(engine.ActionWritten), "restored":
		return color.GreenString(label)
	case string(engine.ActionWouldWrite), "would-restore":
		return color.CyanString(label)
	case "drifted", "missing":
		return color.YellowString(label)
	default:
		return color.HiBlackString(label)
	}
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
