package tools

import (
	"os"
	"path/filepath"
)

// canonicalizeBestEffort resolves symlinks for p if it exists; if p does
// not exist but its parent does, it canonicalizes the parent and rejoins
// the filename (spec.md §4.10, step 3). Falls back to the cleaned path
// unchanged if nothing on the chain can be resolved.
func canonicalizeBestEffort(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}

	parent := filepath.Dir(p)
	if _, err := os.Stat(parent); err == nil {
		if resolvedParent, err := filepath.EvalSymlinks(parent); err == nil {
			return filepath.Join(resolvedParent, filepath.Base(p))
		}
	}
	return filepath.Clean(p)
}
