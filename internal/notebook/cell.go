// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"encoding/json"
	"slices"

	"github.com/pdiddy/literate/pkg/types"
)

// HasTag reports whether the cell carries tag verbatim.
func HasTag(c types.Cell, tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// AddTag appends tag unless the cell already has it. It reports whether the
// cell changed.
func AddTag(c *types.Cell, tag string) bool {
	if HasTag(*c, tag) {
		return false
	}
	c.Tags = append(c.Tags, tag)
	return true
}

// NewMarkdownCell builds a markdown cell. id may be empty for notebooks
// older than nbformat 4.5.
func NewMarkdownCell(source, id string) types.Cell {
	return types.Cell{
		ID:       id,
		Type:     types.CellMarkdown,
		Source:   source,
		Metadata: map[string]json.RawMessage{},
	}
}

// HasCellIDs reports whether the notebook's minor version requires cell ids.
func HasCellIDs(nb *types.Notebook) bool {
	return nb.Format > 4 || (nb.Format == 4 && nb.FormatMinor >= 5)
}

// Clone returns a copy of nb that can be modified without affecting it.
// Raw JSON values are shared since nothing mutates them in place.
func Clone(nb *types.Notebook) *types.Notebook {
	out := &types.Notebook{
		Metadata:    cloneRaw(nb.Metadata),
		Format:      nb.Format,
		FormatMinor: nb.FormatMinor,
		Extra:       cloneRaw(nb.Extra),
		Cells:       make([]types.Cell, len(nb.Cells)),
	}
	for i, c := range nb.Cells {
		out.Cells[i] = CloneCell(c)
	}
	return out
}

// CloneCell returns a copy of c with its own tag slice and metadata maps.
func CloneCell(c types.Cell) types.Cell {
	out := c
	if c.Tags != nil {
		out.Tags = slices.Clone(c.Tags)
	}
	out.Metadata = cloneRaw(c.Metadata)
	out.Extra = cloneRaw(c.Extra)
	return out
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
