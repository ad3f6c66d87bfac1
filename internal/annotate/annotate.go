// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate prepares a notebook for the documentation renderer: the
// code of exported cells is hidden and autodoc directives are inserted for
// public symbols that are not documented anywhere yet.
package annotate

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/literate/internal/docindex"
	"github.com/pdiddy/literate/internal/notebook"
	"github.com/pdiddy/literate/pkg/types"
)

var (
	functionDef = regexp.MustCompile(`^(?:async\s+)?def\s+([^(\s]+)\s*\(`)
	classDef    = regexp.MustCompile(`^class\s+([^(\s:]+)\s*[(:]`)
)

// Symbol is a top-level definition found in a cell.
type Symbol struct {
	Name string
	Kind types.DirectiveKind
}

// DefinedSymbols returns the public top-level functions and classes defined
// in source, in order. Only column-0 definitions count; names starting with
// an underscore are private.
func DefinedSymbols(source string) []Symbol {
	var out []Symbol
	for _, line := range strings.Split(source, "\n") {
		var s Symbol
		if m := functionDef.FindStringSubmatch(line); m != nil {
			s = Symbol{Name: m[1], Kind: types.DirectiveFunction}
		} else if m := classDef.FindStringSubmatch(line); m != nil {
			s = Symbol{Name: m[1], Kind: types.DirectiveClass}
		} else {
			continue
		}
		if strings.HasPrefix(s.Name, "_") {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Annotate returns a copy of nb prepared for rendering, plus the autodoc
// directives it inserted. The copy opens with a py:currentmodule cell for
// module so that names the narrative leaves unqualified resolve.
// classified must come from classify.Classify(nb). Symbols are qualified
// against module and skipped when index already has them. nb and index are
// not modified.
func Annotate(nb *types.Notebook, classified []types.ClassifiedCell, index docindex.Index, module string) (*types.Notebook, []types.DocDirective) {
	tags := make(map[int]types.Tag, len(classified))
	for _, cc := range classified {
		tags[cc.Index] = cc.Tag
	}
	withIDs := notebook.HasCellIDs(nb)

	out := notebook.Clone(nb)
	cells := out.Cells
	out.Cells = make([]types.Cell, 0, len(cells)+1)
	current := types.DocDirective{Symbol: module, Kind: types.DirectiveCurrentModule}
	out.Cells = append(out.Cells, notebook.NewMarkdownCell(current.Markdown(), cellID(withIDs, "literate:currentmodule:"+module)))

	var directives []types.DocDirective
	emitted := map[string]bool{}
	for i, c := range cells {
		tag := tags[i]
		if tag.Exported() {
			notebook.AddTag(&c, types.TagNameRemoveInput)
		}
		out.Cells = append(out.Cells, c)

		if tag != types.TagExport {
			continue
		}
		for _, s := range DefinedSymbols(c.Source) {
			d := types.DocDirective{Symbol: module + "." + s.Name, Kind: s.Kind}
			if index.Has(d.Symbol) || emitted[d.Symbol] {
				continue
			}
			emitted[d.Symbol] = true
			directives = append(directives, d)
			out.Cells = append(out.Cells, notebook.NewMarkdownCell(d.Markdown(), cellID(withIDs, "literate:autodoc:"+d.Symbol)))
		}
	}
	return out, directives
}

// cellID derives a stable id for an inserted cell so that reruns produce
// identical notebooks.
func cellID(enabled bool, name string) string {
	if !enabled {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
