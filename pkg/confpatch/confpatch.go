// Package confpatch provides the public Go library API for confpatch.
//
// confpatch applies user-entered overrides, addressed by flat key paths such
// as "AppSettings.Triggers[0].Type", to the JSON and INI configuration files
// of installed components. This package exposes interfaces and
// constructors for embedding confpatch in other Go programs.
//
// # Basic Usage
//
//	client, err := confpatch.New(confpatch.Options{
//	    ManifestPath: "confpatch.yaml",
//	    LockfilePath: "confpatch.lock",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Configure every component
//	result, err := client.Apply(ctx, confpatch.ApplyOptions{})
//
//	// Check for drift
//	checkResult, err := client.Check(ctx)
package confpatch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/bianoble/confpatch/internal/cache"
	"github.com/bianoble/confpatch/internal/engine"
	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/lock"
	"github.com/bianoble/confpatch/internal/manifest"
	"github.com/bianoble/confpatch/internal/platform"
	"github.com/bianoble/confpatch/internal/sandbox"
	"github.com/bianoble/confpatch/internal/transform"
)

// ApplyOptions configures an apply operation.
type ApplyOptions struct {
	// Only selects component ids by glob ("sched*", "**"). Empty selects all.
	Only   []string
	DryRun bool
}

// RestoreOptions configures a restore operation.
type RestoreOptions struct {
	IDs    []string // empty = restore all
	DryRun bool
}

// Applier configures components from the manifest.
type Applier interface {
	Apply(ctx context.Context, opts ApplyOptions) (*ApplyResult, error)
}

// Checker verifies that configured files match the lockfile.
type Checker interface {
	Check(ctx context.Context) (*CheckResult, error)
}

// Restorer writes backed-up pre-images back to configured files.
type Restorer interface {
	Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error)
}

// Options configures a confpatch client.
type Options struct {
	// Fs is the file system to work on. Default: the OS file system.
	Fs afero.Fs

	// ManifestPath is the path to the manifest. Default: "confpatch.yaml".
	ManifestPath string

	// ValuesFiles are layered on top of the manifest in order.
	ValuesFiles []string

	// LockfilePath is the path to the lockfile. Default: "confpatch.lock".
	LockfilePath string

	// InstallRoot overrides the manifest's install_root.
	InstallRoot string

	// Platform overrides the detected platform id.
	Platform string

	// Vars override manifest variables and EnvFile entries.
	Vars map[string]string

	// EnvFile is a dotenv file of template variables.
	EnvFile string

	// BackupDir is the backup store. If empty, uses the default
	// (~/.local/state/confpatch).
	BackupDir string

	// Parallelism bounds how many target files are configured at once.
	// Zero means no limit.
	Parallelism int
}

// Client is the main entry point for the confpatch library.
// It implements Applier, Checker and Restorer.
type Client struct {
	fs           afero.Fs
	registry     *format.Registry
	manifestPath string
	valuesFiles  []string
	lockfilePath string
	installRoot  string
	platform     string
	vars         map[string]string
	envFile      string
	backupDir    string
	parallelism  int
}

// New creates a new confpatch Client.
func New(opts Options) (*Client, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = "confpatch.yaml"
	}
	if opts.LockfilePath == "" {
		opts.LockfilePath = "confpatch.lock"
	}
	if opts.BackupDir == "" {
		opts.BackupDir = cache.DefaultDir()
	}
	if opts.Platform == "" {
		opts.Platform = platform.Detect()
	} else if err := platform.Validate(opts.Platform); err != nil {
		return nil, err
	}

	return &Client{
		fs:           opts.Fs,
		registry:     format.DefaultRegistry(),
		manifestPath: opts.ManifestPath,
		valuesFiles:  opts.ValuesFiles,
		lockfilePath: opts.LockfilePath,
		installRoot:  opts.InstallRoot,
		platform:     opts.Platform,
		vars:         opts.Vars,
		envFile:      opts.EnvFile,
		backupDir:    opts.BackupDir,
		parallelism:  opts.Parallelism,
	}, nil
}

// Platform returns the platform id components are resolved for.
func (c *Client) Platform() string {
	return c.platform
}

// Registry returns the format registry, so callers can register patchers
// for more formats.
func (c *Client) Registry() *format.Registry {
	return c.registry
}

func (c *Client) loadManifest() (*manifest.Manifest, error) {
	return manifest.LoadLayered(c.fs, c.manifestPath, c.valuesFiles)
}

func (c *Client) loadLockfile() (*lock.Lockfile, error) {
	lf, err := lock.Load(c.fs, c.lockfilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no lockfile at %s — run 'confpatch apply' first", c.lockfilePath)
	}
	return lf, err
}

func (c *Client) sandbox(m *manifest.Manifest) (*sandbox.Sandbox, error) {
	root := c.installRoot
	if root == "" && m != nil {
		root = m.InstallRoot
	}
	return sandbox.New(c.fs, root)
}

func (c *Client) backups() (*cache.Cache, error) {
	b, err := cache.New(c.fs, c.backupDir)
	if err != nil {
		return nil, fmt.Errorf("initializing backup store: %w", err)
	}
	return b, nil
}

func (c *Client) variables(m *manifest.Manifest) (map[string]string, error) {
	var env map[string]string
	if c.envFile != "" {
		var err error
		if env, err = transform.LoadEnvFile(c.fs, c.envFile); err != nil {
			return nil, err
		}
	}
	return transform.MergeVars(m.Variables, env, c.vars), nil
}

// Apply configures the selected components. Components writing the same
// file run in manifest order; a failing component never stops the others.
// Unless DryRun is set, the lockfile records every configured component.
func (c *Client) Apply(ctx context.Context, opts ApplyOptions) (*ApplyResult, error) {
	m, err := c.loadManifest()
	if err != nil {
		return nil, err
	}
	sb, err := c.sandbox(m)
	if err != nil {
		return nil, err
	}
	planned, err := c.plan(m, sb, opts.Only)
	if err != nil {
		return nil, err
	}

	eng := &engine.Engine{
		Sandbox:     sb,
		Registry:    c.registry,
		DryRun:      opts.DryRun,
		Parallelism: c.parallelism,
	}
	if !opts.DryRun {
		if eng.Backups, err = c.backups(); err != nil {
			return nil, err
		}
	}

	var specs []engine.ComponentSpec
	for _, p := range planned {
		if p.Err == nil {
			specs = append(specs, p.Spec)
		}
	}
	configured := eng.ConfigureAll(ctx, specs)
	result := inManifestOrder(planned, configured)

	if opts.DryRun {
		return result, nil
	}

	lf, err := lock.LoadOrNew(c.fs, c.lockfilePath)
	if err != nil {
		return result, err
	}
	record(lf, result.Results)
	if err := lock.Save(c.fs, c.lockfilePath, lf); err != nil {
		return result, err
	}
	return result, nil
}

// inManifestOrder merges planning failures into the engine result so both
// lists follow manifest order.
func inManifestOrder(planned []Planned, configured *engine.ApplyResult) *ApplyResult {
	errs := make(map[string]engine.ComponentError, len(configured.Errors))
	for _, e := range configured.Errors {
		errs[e.Component] = e
	}

	out := &ApplyResult{Results: configured.Results}
	for _, p := range planned {
		if p.Err != nil {
			out.Errors = append(out.Errors, engine.ComponentError{Component: p.Component.ID, Err: p.Err})
			continue
		}
		if e, ok := errs[p.Component.ID]; ok {
			out.Errors = append(out.Errors, e)
		}
	}
	return out
}

// record upserts an entry per configured component. A component keeps the
// backup from its earlier apply while its target still holds what confpatch
// wrote, so restore always reaches the content from before the first apply.
// Every entry of a target ends with the target's final hash.
func record(lf *lock.Lockfile, results []ComponentResult) {
	final := make(map[string]string)
	for _, res := range results {
		entry := lock.Entry{
			ID:     res.ID,
			Target: res.Target,
			Format: string(res.Format),
			Mode:   string(res.Mode),
			SHA256: res.SHA256,
			Backup: res.Backup,
		}
		if prev, ok := lf.Find(res.ID); ok && prev.Target == res.Target && prev.Backup != "" {
			if res.Backup == "" || prev.SHA256 == cache.ComputeHash(res.Before) {
				entry.Backup = prev.Backup
			}
		}
		lf.Upsert(entry)
		final[res.Target] = res.SHA256
	}

	for i := range lf.Components {
		if sum, ok := final[lf.Components[i].Target]; ok {
			lf.Components[i].SHA256 = sum
		}
	}
}

// Check verifies that configured files match the lockfile.
func (c *Client) Check(ctx context.Context) (*CheckResult, error) {
	lf, err := c.loadLockfile()
	if err != nil {
		return nil, err
	}
	sb, err := sandbox.New(c.fs, "")
	if err != nil {
		return nil, err
	}

	eng := &engine.CheckEngine{Sandbox: sb}
	return eng.Check(ctx, *lf)
}

// Restore writes the backed-up pre-images of the selected components back
// to their files. Unless DryRun is set, restored targets leave the
// lockfile.
func (c *Client) Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	lf, err := c.loadLockfile()
	if err != nil {
		return nil, err
	}
	sb, err := sandbox.New(c.fs, "")
	if err != nil {
		return nil, err
	}
	backups, err := c.backups()
	if err != nil {
		return nil, err
	}

	eng := &engine.RestoreEngine{Sandbox: sb, Backups: backups, DryRun: opts.DryRun}
	result, err := eng.Restore(ctx, lf, opts.IDs)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun && len(result.Restored) > 0 {
		if err := lock.Save(c.fs, c.lockfilePath, lf); err != nil {
			return result, err
		}
	}
	return result, nil
}
