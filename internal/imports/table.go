// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imports turns absolute imports of the exported package into
// package-relative ones. Recognition is purely syntactic.
package imports

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Table is a read-only lookup from dotted module names to the file or
// directory that provides them. Build it once per batch.
type Table struct {
	pkg     string
	modules map[string]string
}

// NewTable builds a table for package pkg from an explicit module map.
// The package itself is always present.
func NewTable(pkg string, modules map[string]string) Table {
	t := Table{pkg: pkg, modules: make(map[string]string, len(modules)+1)}
	t.modules[pkg] = pkg
	for name, path := range modules {
		t.add(name, path)
	}
	return t
}

// BuildTable scans packageRoot for Python modules and packages and adds the
// planned modules the current batch is about to generate (module name to
// target file). A missing package root is not an error; the tree simply
// contains only planned modules.
func BuildTable(packageRoot string, planned map[string]string) (Table, error) {
	root := filepath.Clean(packageRoot)
	pkg := filepath.Base(root)
	t := Table{pkg: pkg, modules: map[string]string{pkg: root}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || name == "__pycache__" {
				return filepath.SkipDir
			}
			t.modules[moduleName(pkg, root, path)] = path
			return nil
		}
		if filepath.Ext(name) != ".py" || name == "__init__.py" {
			return nil
		}
		t.modules[moduleName(pkg, root, strings.TrimSuffix(path, ".py"))] = path
		return nil
	})
	if err != nil {
		return Table{}, fmt.Errorf("scanning package %s: %w", root, err)
	}

	for name, path := range planned {
		t.add(name, path)
	}
	return t, nil
}

// add records name and every ancestor package of it.
func (t Table) add(name, path string) {
	t.modules[name] = path
	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i > 0; i-- {
		parent := strings.Join(parts[:i], ".")
		if _, ok := t.modules[parent]; !ok {
			t.modules[parent] = parent
		}
	}
}

func moduleName(pkg, root, path string) string {
	rel, _ := filepath.Rel(root, path)
	return pkg + "." + strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

// Package returns the top-level package name.
func (t Table) Package() string { return t.pkg }

// Len returns the number of known modules, packages included.
func (t Table) Len() int { return len(t.modules) }

// Lookup returns the file backing a fully qualified module name.
func (t Table) Lookup(name string) (string, bool) {
	path, ok := t.modules[name]
	return path, ok
}

// Resolve maps an absolute import target to a fully qualified internal
// module. Names are tried as written first and then relative to the package
// root, so "util" finds "pkg.util". An internal match always takes
// precedence over an external package with the same name.
func (t Table) Resolve(name string) (string, bool) {
	if _, ok := t.modules[name]; ok {
		return name, true
	}
	if t.pkg == "" {
		return "", false
	}
	q := t.pkg + "." + name
	if _, ok := t.modules[q]; ok {
		return q, true
	}
	return "", false
}
