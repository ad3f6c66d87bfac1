// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify resolves each notebook cell to a visibility tag.
package classify

import (
	"github.com/pdiddy/literate/pkg/types"
)

// ResolveTag returns the most visible recognized tag on a code cell.
// Narrative cells never export, whatever their tags say.
func ResolveTag(c types.Cell) types.Tag {
	if c.Type != types.CellCode {
		return types.TagNone
	}
	best := types.TagNone
	for _, s := range c.Tags {
		if t := types.TagFromString(s); t > best {
			best = t
		}
	}
	return best
}

// Classify pairs every cell of nb with its resolved tag, in notebook order.
func Classify(nb *types.Notebook) []types.ClassifiedCell {
	out := make([]types.ClassifiedCell, len(nb.Cells))
	for i, c := range nb.Cells {
		out[i] = types.ClassifiedCell{Index: i, Cell: c, Tag: ResolveTag(c)}
	}
	return out
}

// ExportUnits keeps the cells that belong in the generated module.
func ExportUnits(classified []types.ClassifiedCell) []types.ClassifiedCell {
	var units []types.ClassifiedCell
	for _, cc := range classified {
		if cc.Tag.Exported() {
			units = append(units, cc)
		}
	}
	return units
}
