package manifest

import (
	"fmt"

	"github.com/bianoble/confpatch/internal/value"
)

// Merge combines two manifests where overlay takes precedence over base.
// This implements the values-file layering:
//   - version: must agree if both declare it (non-zero); fatal error on mismatch
//   - install_root: overlay wins when set
//   - variables: deep merge, overlay keys win
//   - components: merge by id; a known id is merged field by field, a new id
//     is appended
func Merge(base, overlay *Manifest) (*Manifest, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	result := &Manifest{}

	if err := mergeVersion(base.Version, overlay.Version, &result.Version); err != nil {
		return nil, err
	}

	result.InstallRoot = base.InstallRoot
	if overlay.InstallRoot != "" {
		result.InstallRoot = overlay.InstallRoot
	}

	result.Variables = mergeVariables(base.Variables, overlay.Variables)
	result.Components = mergeComponents(base.Components, overlay.Components)

	return result, nil
}

// MergeAll merges multiple manifests in order (lowest precedence first).
// Returns an error if any version mismatch is found.
func MergeAll(layers []*Manifest) (*Manifest, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("no manifests to merge")
	}

	result := layers[0]
	for i := 1; i < len(layers); i++ {
		var err error
		result, err = Merge(result, layers[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mergeVersion(base, overlay int, out *int) error {
	switch {
	case base == 0 && overlay == 0:
		*out = 0 // neither declares; validation will catch this
	case base == 0:
		*out = overlay
	case overlay == 0:
		*out = base
	case base == overlay:
		*out = base
	default:
		return fmt.Errorf("manifest version mismatch: one layer declares version %d, another declares version %d — all layers must agree on version", base, overlay)
	}
	return nil
}

func mergeVariables(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}

	result := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overlay {
		result[k] = v // overlay wins
	}
	return result
}

func mergeComponents(base, overlay []Component) []Component {
	if len(overlay) == 0 {
		return base
	}

	result := make([]Component, len(base), len(base)+len(overlay))
	copy(result, base)

	index := make(map[string]int, len(base))
	for i, c := range result {
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	for _, c := range overlay {
		if i, ok := index[c.ID]; ok && c.ID != "" {
			result[i] = mergeComponent(result[i], c)
			continue
		}
		index[c.ID] = len(result)
		result = append(result, c)
	}
	return result
}

// mergeComponent overlays the fields overlay sets onto base. Values merge
// per key with overlay winning; platforms merge per platform id.
func mergeComponent(base, overlay Component) Component {
	out := base
	setString(&out.Name, overlay.Name)
	setString(&out.DownloadURL, overlay.DownloadURL)
	setString(&out.Folder, overlay.Folder)
	setString(&out.Format, overlay.Format)
	setString(&out.Mode, overlay.Mode)
	setString(&out.Target, overlay.Target)

	if overlay.ManualConfiguration != nil {
		out.ManualConfiguration = overlay.ManualConfiguration
	}
	if overlay.Prefill != nil {
		out.Prefill = overlay.Prefill
	}
	out.AllowComments = base.AllowComments || overlay.AllowComments

	if overlay.Configuration.Kind() != value.KindNull {
		out.Configuration = overlay.Configuration
	}

	if len(overlay.Platforms) > 0 {
		out.Platforms = make(map[string]PlatformTarget, len(base.Platforms)+len(overlay.Platforms))
		for id, p := range base.Platforms {
			out.Platforms[id] = p
		}
		for id, p := range overlay.Platforms {
			merged := out.Platforms[id]
			setString(&merged.DownloadURL, p.DownloadURL)
			setString(&merged.Target, p.Target)
			out.Platforms[id] = merged
		}
	}

	if overlay.Values.Len() > 0 {
		out.Values = Values{m: base.Values.Map().Overlay(overlay.Values.Map())}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
