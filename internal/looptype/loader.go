package looptype

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// BuiltinToken is the special search-path entry that enables the embedded
// definitions (spec.md §6.3: "loop-type search paths ... with the special
// token builtin enabling embedded types").
const BuiltinToken = "builtin"

var (
	// ErrExtendsCycle is returned when an extends chain closes a cycle.
	ErrExtendsCycle = errors.New("looptype: extends cycle detected")
)

// Load reads loop-type definitions from search path and resolves `extends`
// inheritance, mirroring tarsy's config.load: built-in defaults are loaded
// first, then on-disk files are merged in, later definitions overriding
// earlier ones by name (config/loader.go's merge-built-in-then-override
// shape; here at the whole-definition granularity rather than field).
func Load(searchPaths []string) (*Registry, error) {
	raw := map[string]*Definition{}

	for _, p := range searchPaths {
		if p == BuiltinToken {
			for name, def := range builtinDefinitions() {
				raw[name] = def.clone()
			}
			continue
		}
		defs, err := loadDir(p)
		if err != nil {
			return nil, fmt.Errorf("looptype: load %s: %w", p, err)
		}
		for name, def := range defs {
			raw[name] = def
		}
	}

	resolved, err := resolveAll(raw)
	if err != nil {
		return nil, err
	}
	return newRegistry(resolved), nil
}

// loadDir reads every *.yaml/*.yml file in dir. Each file holds a YAML
// map of definition name -> fields (tarsy.yaml's grouping-multiple-
// configs-in-one-file shape, pkg/config/loader.go's loadYAML).
func loadDir(dir string) (map[string]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dir)
		}
		return nil, err
	}

	out := map[string]*Definition{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var fileDefs map[string]*Definition
		if err := yaml.Unmarshal(data, &fileDefs); err != nil {
			return nil, fmt.Errorf("invalid yaml in %s: %w", name, err)
		}
		for defName, def := range fileDefs {
			def.Name = defName
			out[defName] = def
		}
	}
	return out, nil
}

// resolveAll resolves every definition's extends chain, returning a map
// keyed by name of fully-merged definitions (child scalars win, lists
// unioned with the parent's).
func resolveAll(raw map[string]*Definition) (map[string]*Definition, error) {
	resolved := map[string]*Definition{}
	inProgress := map[string]bool{}

	var resolve func(name string) (*Definition, error)
	resolve = func(name string) (*Definition, error) {
		if def, ok := resolved[name]; ok {
			return def, nil
		}
		raw, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("looptype: unknown loop type %q referenced by extends", name)
		}
		if raw.Extends == "" {
			final := raw.clone()
			resolved[name] = final
			return final, nil
		}

		if inProgress[name] {
			return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, name)
		}
		inProgress[name] = true
		defer delete(inProgress, name)

		parent, err := resolve(raw.Extends)
		if err != nil {
			return nil, err
		}

		merged := parent.clone()
		merged.Name = name
		merged.Extends = raw.Extends
		// The child's own cascade parent wins; a child that names none
		// keeps the extended definition's cascade Parent, the same
		// child-wins rule as every other scalar field.
		merged.Parent = raw.Parent
		if merged.Parent == "" {
			merged.Parent = parent.Parent
		}

		if err := mergo.Merge(merged, raw.clone(), mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("looptype: merge %s over %s: %w", name, raw.Extends, err)
		}
		// mergo's WithAppendSlice duplicates rather than unions; dedupe.
		merged.Tools = dedupe(merged.Tools)
		merged.Inputs = dedupe(merged.Inputs)
		merged.Outputs = dedupe(merged.Outputs)

		resolved[name] = merged
		return merged, nil
	}

	for name := range raw {
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
