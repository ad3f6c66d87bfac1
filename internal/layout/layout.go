// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout maps notebooks to the module and documentation files they
// produce, and rejects configurations that are incomplete or contradictory
// before anything is written.
package layout

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/literate/pkg/types"
)

// Target is where one notebook's artifacts go.
type Target struct {
	// Notebook is the notebook path as supplied.
	Notebook string

	// SourcePath is the notebook path relative to the project root,
	// slash-separated. It is what the provenance header names.
	SourcePath string

	// Module is the dotted module name, e.g. "mypkg.sub.core".
	Module string

	// CodePath is the generated module file.
	CodePath string

	// DocPath is the annotated notebook file, or "" when doc export is off.
	DocPath string
}

// Planned is a resolved notebook in a batch. Err is a *types.ConfigError
// when the notebook cannot be exported under the current configuration.
type Planned struct {
	Target
	Err error
}

// Validate checks cfg for missing and contradictory settings.
func Validate(cfg types.ProjectConfig) error {
	if cfg.SourceDir == "" {
		return &types.ConfigError{Field: "source_dir", Reason: "required"}
	}
	if cfg.CodeDir == "" {
		return &types.ConfigError{Field: "code_dir", Reason: "required"}
	}
	if name := cfg.PackageName(); name == "." || name == string(filepath.Separator) || name == ".." {
		return &types.ConfigError{Field: "code_dir", Reason: fmt.Sprintf("%q does not name a package directory", cfg.CodeDir)}
	}
	switch cfg.EmptyModule {
	case "", types.EmptyModuleSkip, types.EmptyModuleWrite:
	default:
		return &types.ConfigError{Field: "empty_module", Reason: fmt.Sprintf("unknown policy %q (want skip or write)", cfg.EmptyModule)}
	}
	if cfg.Jobs < 0 {
		return &types.ConfigError{Field: "jobs", Reason: "must not be negative"}
	}

	dirs := map[string]string{}
	for _, r := range cfg.Directories {
		nb, pkg := cleanRel(r.Notebook), cleanRel(r.Package)
		if escapes(nb) || escapes(pkg) {
			return &types.ConfigError{Field: "directories", Reason: fmt.Sprintf("rule %q -> %q must stay inside its root", r.Notebook, r.Package)}
		}
		if prev, ok := dirs[nb]; ok && prev != pkg {
			return &types.ConfigError{Field: "directories", Reason: fmt.Sprintf("notebook directory %q maps to both %q and %q", r.Notebook, prev, pkg)}
		}
		dirs[nb] = pkg
	}

	mods := map[string]string{}
	for _, r := range cfg.Modules {
		if r.Notebook == "" || r.Module == "" {
			return &types.ConfigError{Field: "modules", Reason: "rules need both notebook and module"}
		}
		if strings.ContainsAny(r.Module, `./\`) {
			return &types.ConfigError{Field: "modules", Reason: fmt.Sprintf("module stem %q must not contain separators or dots", r.Module)}
		}
		if prev, ok := mods[r.Notebook]; ok && prev != r.Module {
			return &types.ConfigError{Field: "modules", Reason: fmt.Sprintf("notebook %q maps to both %q and %q", r.Notebook, prev, r.Module)}
		}
		mods[r.Notebook] = r.Module
	}
	return nil
}

// Resolve computes the target of a single notebook. It does not validate
// cfg; call Validate first.
func Resolve(cfg types.ProjectConfig, notebookPath string) (Target, error) {
	srcRoot, err := filepath.Abs(cfg.SourcePath())
	if err != nil {
		return Target{}, fmt.Errorf("resolving source directory: %w", err)
	}
	abs, err := filepath.Abs(notebookPath)
	if err != nil {
		return Target{}, fmt.Errorf("resolving notebook path: %w", err)
	}
	rel, err := filepath.Rel(srcRoot, abs)
	if err != nil || escapes(filepath.ToSlash(rel)) {
		return Target{}, &types.ConfigError{Field: "source_dir", Reason: fmt.Sprintf("notebook %s is outside %s", notebookPath, cfg.SourcePath())}
	}
	rel = filepath.ToSlash(rel)

	relNoExt := strings.TrimSuffix(rel, path.Ext(rel))
	relDir := cleanRel(path.Dir(rel))
	stem := path.Base(relNoExt)

	pkgDir := mapDirectory(cfg.Directories, relDir)
	modStem := mapStem(cfg.Modules, relNoExt, stem)

	parts := []string{cfg.PackageName()}
	if pkgDir != "" {
		parts = append(parts, strings.Split(pkgDir, "/")...)
	}
	parts = append(parts, modStem)

	t := Target{
		Notebook:   notebookPath,
		SourcePath: sourcePath(cfg.Root, abs, rel),
		Module:     strings.Join(parts, "."),
		CodePath:   filepath.Join(cfg.CodePath(), filepath.FromSlash(pkgDir), modStem+".py"),
	}
	if docRoot := cfg.DocPath(); docRoot != "" {
		t.DocPath = filepath.Join(docRoot, filepath.FromSlash(relNoExt)+".ipynb")
	}
	return t, nil
}

// Plan resolves a batch of notebooks. Notebooks whose module or doc file
// would collide with another notebook's are rejected as configuration
// errors; no collision is ever settled by overwriting. Duplicate inputs are
// dropped. Results follow input order.
func Plan(cfg types.ProjectConfig, notebooks []string) []Planned {
	seen := map[string]bool{}
	var out []Planned
	for _, nb := range notebooks {
		key := notebookKey(nb)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Planned{Target: Target{Notebook: nb}})
	}

	if err := Validate(cfg); err != nil {
		for i := range out {
			out[i].Err = err
		}
		return out
	}

	owners := map[string][]int{}
	for i := range out {
		t, err := Resolve(cfg, out[i].Notebook)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Target = t
		owners[t.CodePath] = append(owners[t.CodePath], i)
		if t.DocPath != "" {
			owners[t.DocPath] = append(owners[t.DocPath], i)
		}
	}

	paths := make([]string, 0, len(owners))
	for p := range owners {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		idx := owners[p]
		if len(idx) < 2 {
			continue
		}
		names := make([]string, len(idx))
		for j, i := range idx {
			names[j] = out[i].Notebook
		}
		err := &types.ConfigError{Field: "modules", Reason: fmt.Sprintf("%s all map to %s", strings.Join(names, ", "), p)}
		for _, i := range idx {
			if out[i].Err == nil {
				out[i].Err = err
			}
		}
	}
	return out
}

// PlanWithin resolves the selected notebooks against the whole project.
// Collisions are checked across selected and project together, so
// exporting a subset never overwrites a file another project notebook owns.
// selected holds the selected notebooks in input order; all additionally
// holds the project notebooks that were not selected.
func PlanWithin(cfg types.ProjectConfig, notebooks, project []string) (selected, all []Planned) {
	n := 0
	seen := map[string]bool{}
	for _, nb := range notebooks {
		if key := notebookKey(nb); !seen[key] {
			seen[key] = true
			n++
		}
	}
	combined := make([]string, 0, len(notebooks)+len(project))
	combined = append(combined, notebooks...)
	combined = append(combined, project...)
	all = Plan(cfg, combined)
	return all[:n], all
}

func notebookKey(nb string) string {
	key, err := filepath.Abs(nb)
	if err != nil {
		return nb
	}
	return key
}

// mapDirectory applies the longest directory rule matching relDir.
func mapDirectory(rules []types.DirectoryRule, relDir string) string {
	best, bestLen, found := "", -1, false
	for _, r := range rules {
		nb := cleanRel(r.Notebook)
		var rest string
		switch {
		case nb == "":
			rest = relDir
		case relDir == nb:
			rest = ""
		case strings.HasPrefix(relDir, nb+"/"):
			rest = relDir[len(nb)+1:]
		default:
			continue
		}
		if len(nb) > bestLen {
			best, bestLen, found = path.Join(cleanRel(r.Package), rest), len(nb), true
		}
	}
	if !found {
		return relDir
	}
	return cleanRel(best)
}

// mapStem applies a module rule matching either the notebook's
// source-relative path without extension or its bare stem.
func mapStem(rules []types.ModuleRule, relNoExt, stem string) string {
	for _, r := range rules {
		if filepath.ToSlash(r.Notebook) == relNoExt {
			return r.Module
		}
	}
	for _, r := range rules {
		if r.Notebook == stem {
			return r.Module
		}
	}
	return stem
}

func sourcePath(root, abs, fallback string) string {
	base, err := filepath.Abs(root)
	if err != nil {
		return fallback
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || escapes(filepath.ToSlash(rel)) {
		return fallback
	}
	return filepath.ToSlash(rel)
}

// cleanRel normalizes a slash-separated relative path, mapping "." to "".
func cleanRel(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	if p == "." {
		return ""
	}
	return p
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p)
}
