package lock

// Lockfile represents the confpatch.lock receipt: what was applied to which
// file, and where its pre-image is backed up.
type Lockfile struct {
	Version    int     `yaml:"version"`
	Components []Entry `yaml:"components"`
}

// Entry records one applied component.
type Entry struct {
	ID     string `yaml:"id"`
	Target string `yaml:"target"`
	Format string `yaml:"format"`
	Mode   string `yaml:"mode"`
	// SHA256 is the hash of the target content after the apply.
	SHA256 string `yaml:"sha256"`
	// Backup is the hash of the pre-image in the backup store.
	Backup string `yaml:"backup,omitempty"`
}

// New returns an empty version 1 lockfile.
func New() *Lockfile {
	return &Lockfile{Version: 1}
}

// Find returns the entry for id.
func (lf *Lockfile) Find(id string) (Entry, bool) {
	for _, e := range lf.Components {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Upsert replaces the entry with the same id in place or appends e.
func (lf *Lockfile) Upsert(e Entry) {
	for i := range lf.Components {
		if lf.Components[i].ID == e.ID {
			lf.Components[i] = e
			return
		}
	}
	lf.Components = append(lf.Components, e)
}

// ByTarget returns the entries writing to target, in lockfile order.
func (lf *Lockfile) ByTarget(target string) []Entry {
	var out []Entry
	for _, e := range lf.Components {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out
}
