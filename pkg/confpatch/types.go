package confpatch

import (
	"github.com/bianoble/confpatch/internal/engine"
	"github.com/bianoble/confpatch/internal/format"
	"github.com/bianoble/confpatch/internal/manifest"
)

// Type aliases re-export engine and manifest types as the public API.
// Users import "github.com/bianoble/confpatch/pkg/confpatch" and use
// confpatch.ApplyResult, confpatch.CheckResult, etc.

type ComponentSpec = engine.ComponentSpec
type ComponentResult = engine.ComponentResult
type ComponentError = engine.ComponentError
type Action = engine.Action
type ApplyResult = engine.ApplyResult
type FileAction = engine.FileAction
type DriftEntry = engine.DriftEntry
type CheckResult = engine.CheckResult
type RestoreResult = engine.RestoreResult

type Format = format.Format
type Mode = format.Mode

type Manifest = manifest.Manifest
type Component = manifest.Component
