// Package platform names the runtime platform the way component catalogs
// key their downloads ("win-x64", "linux-arm64") and resolves where a
// component's configuration file lives under the install root.
package platform

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// builtinPlatforms maps GOOS/GOARCH pairs to catalog platform ids.
var builtinPlatforms = map[string]string{
	"windows/amd64": "win-x64",
	"windows/386":   "win-x86",
	"windows/arm64": "win-arm64",
	"linux/amd64":   "linux-x64",
	"linux/arm64":   "linux-arm64",
	"darwin/amd64":  "osx-x64",
	"darwin/arm64":  "osx-arm64",
}

// fallbacks is the id used for an unlisted architecture of a known OS.
var fallbacks = map[string]string{
	"windows": "win-x64",
	"linux":   "linux-x64",
	"darwin":  "osx-x64",
}

var descriptions = map[string]string{
	"win-x64":     "Windows 64-bit (x64)",
	"win-x86":     "Windows 32-bit (x86)",
	"win-arm64":   "Windows ARM 64-bit",
	"linux-x64":   "Linux 64-bit",
	"linux-arm64": "Linux ARM 64-bit",
	"osx-x64":     "macOS Intel",
	"osx-arm64":   "macOS Apple Silicon",
}

// Detect returns the platform id of the running process.
func Detect() string {
	return For(runtime.GOOS, runtime.GOARCH)
}

// For returns the platform id for a GOOS/GOARCH pair. Unknown operating
// systems map to "win-x64".
func For(goos, goarch string) string {
	if id, ok := builtinPlatforms[goos+"/"+goarch]; ok {
		return id
	}
	if id, ok := fallbacks[goos]; ok {
		return id
	}
	return "win-x64"
}

// Describe returns a human-readable name for a platform id.
func Describe(id string) string {
	if d, ok := descriptions[id]; ok {
		return d
	}
	return id
}

// Known returns every platform id, sorted.
func Known() []string {
	ids := make([]string, 0, len(descriptions))
	for id := range descriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsKnown reports whether id is a platform id.
func IsKnown(id string) bool {
	_, ok := descriptions[id]
	return ok
}

// Validate returns an error naming the known ids when id is not one of them.
func Validate(id string) error {
	if IsKnown(id) {
		return nil
	}
	return fmt.Errorf("unknown platform '%s' — must be one of: %s", id, strings.Join(Known(), ", "))
}

// ComponentFolder derives a component's install folder from its download
// URL: the file name without extension, cut at the first '-'.
// "https://host/latest/HuloopScheduler-win-x64.zip" gives "HuloopScheduler".
func ComponentFolder(downloadURL string) string {
	if downloadURL == "" {
		return ""
	}
	p := downloadURL
	if u, err := url.Parse(downloadURL); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	if i := strings.IndexByte(name, '-'); i >= 0 {
		name = name[:i]
	}
	return name
}

// ResolveTarget joins installRoot, folder and the component's target.
// Leading separators of target are dropped so it always nests under the
// folder.
func ResolveTarget(installRoot, folder, target string) string {
	target = strings.TrimLeft(target, `\/`)
	return filepath.Join(installRoot, folder, filepath.FromSlash(strings.ReplaceAll(target, `\`, "/")))
}
