// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docindex loads the set of symbols that are already documented, so
// the annotator does not emit duplicate autodoc directives. Indexes are
// read-only once built.
package docindex

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Index is an immutable set of fully qualified symbol names.
type Index struct {
	names map[string]struct{}
}

// New builds an index from names. Blank names are ignored.
func New(names ...string) Index {
	idx := Index{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			idx.names[n] = struct{}{}
		}
	}
	return idx
}

// Has reports whether name is documented.
func (i Index) Has(name string) bool {
	_, ok := i.names[name]
	return ok
}

// Len returns the number of symbols.
func (i Index) Len() int { return len(i.names) }

// Names returns the symbols in sorted order.
func (i Index) Names() []string {
	out := make([]string, 0, len(i.names))
	for n := range i.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Union returns a new index holding the symbols of both.
func (i Index) Union(other Index) Index {
	out := Index{names: make(map[string]struct{}, len(i.names)+len(other.names))}
	for n := range i.names {
		out.names[n] = struct{}{}
	}
	for n := range other.names {
		out.names[n] = struct{}{}
	}
	return out
}

// Load reads an index file, choosing the reader from the extension:
// .txt/.lst plain lists, .yaml/.yml, .db/.sqlite/.sqlite3 SQLite, and .inv
// Sphinx inventories. An empty path yields an empty index.
func Load(ctx context.Context, path string) (Index, error) {
	if path == "" {
		return New(), nil
	}
	var (
		names []string
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".lst", "":
		names, err = loadText(path)
	case ".yaml", ".yml":
		names, err = loadYAML(path)
	case ".db", ".sqlite", ".sqlite3":
		names, err = loadSQLite(ctx, path)
	case ".inv":
		names, err = loadInventory(path)
	default:
		return Index{}, fmt.Errorf("doc index %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return Index{}, fmt.Errorf("loading doc index %s: %w", path, err)
	}
	return New(names...), nil
}
