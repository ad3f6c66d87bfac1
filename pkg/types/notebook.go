// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// CellType identifies the kind of a notebook cell.
type CellType string

const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
	CellRaw      CellType = "raw"
)

// IsNarrative reports whether the cell carries prose rather than code.
func (t CellType) IsNarrative() bool {
	return t == CellMarkdown || t == CellRaw
}

// Notebook is an nbformat v4 document. Everything the pipeline does not
// interpret is kept as raw JSON so that it serializes back unchanged.
type Notebook struct {
	// Cells holds the notebook cells in document order.
	Cells []Cell

	// Metadata is the notebook-level metadata (kernelspec, language_info, ...).
	Metadata map[string]json.RawMessage

	// Format and FormatMinor are the nbformat version numbers.
	Format      int
	FormatMinor int

	// Extra holds unknown top-level keys.
	Extra map[string]json.RawMessage
}

// Cell is a single notebook cell.
type Cell struct {
	// ID is the nbformat 4.5 cell id. Empty for older notebooks.
	ID string

	Type CellType

	// Source is the cell text with multi-line sources already joined.
	Source string

	// Tags is metadata.tags verbatim. A nil slice means the key was absent.
	Tags []string

	// Metadata holds every cell metadata key other than "tags".
	Metadata map[string]json.RawMessage

	// Outputs and ExecutionCount are opaque and only present on code cells.
	Outputs        json.RawMessage
	ExecutionCount json.RawMessage

	// Extra holds unknown cell keys such as attachments.
	Extra map[string]json.RawMessage
}

// ClassifiedCell pairs a cell with its resolved tag and its position in the
// source notebook.
type ClassifiedCell struct {
	Index int
	Cell  Cell
	Tag   Tag
}
