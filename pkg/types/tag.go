// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Tag is the visibility a cell resolves to. Higher values are more visible,
// so the strongest recognized tag on a cell wins.
type Tag int

const (
	TagNone Tag = iota
	TagExportInternal
	TagExport
)

// Recognized metadata tag strings.
const (
	TagNameExport         = "export"
	TagNameExportInternal = "export-internal"

	// TagNameRemoveInput hides a cell's input in the rendered documentation.
	TagNameRemoveInput = "remove-input"
	// TagNameRemoveCell drops a cell from the rendered documentation.
	TagNameRemoveCell = "remove-cell"
)

// TagFromString maps a metadata tag string to a Tag. Unrecognized strings
// map to TagNone.
func TagFromString(s string) Tag {
	switch s {
	case TagNameExport:
		return TagExport
	case TagNameExportInternal:
		return TagExportInternal
	default:
		return TagNone
	}
}

// String returns the metadata spelling of the tag, or "none".
func (t Tag) String() string {
	switch t {
	case TagExport:
		return TagNameExport
	case TagExportInternal:
		return TagNameExportInternal
	default:
		return "none"
	}
}

// Exported reports whether cells with this tag belong in the generated module.
func (t Tag) Exported() bool {
	return t == TagExport || t == TagExportInternal
}
