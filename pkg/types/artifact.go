// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// ModuleArtifact is a generated Python module assembled from exported cells.
type ModuleArtifact struct {
	// Path is the file the module is written to.
	Path string `json:"path" yaml:"path"`

	// SourcePath is the project-relative, slash-separated notebook path.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Module is the dotted module name (e.g. "mypkg.sub.mod").
	Module string `json:"module" yaml:"module"`

	// Header is the provenance comment block, without a trailing newline.
	Header string `json:"header" yaml:"header"`

	// Fragments holds the rewritten cell sources in notebook order.
	Fragments []string `json:"fragments" yaml:"fragments"`
}

// Empty reports whether no cell contributed code.
func (a *ModuleArtifact) Empty() bool {
	return len(a.Fragments) == 0
}

// Bytes renders the module: header, one blank line, then the fragments
// separated by exactly one blank line, with a trailing newline.
func (a *ModuleArtifact) Bytes() []byte {
	var b strings.Builder
	b.WriteString(a.Header)
	b.WriteString("\n")
	if len(a.Fragments) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(a.Fragments, "\n\n"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// DirectiveKind selects the autodoc directive used for a symbol.
type DirectiveKind string

const (
	DirectiveFunction DirectiveKind = "autofunction"
	DirectiveClass    DirectiveKind = "autoclass"

	// DirectiveCurrentModule sets the module that unqualified names in the
	// rest of the document resolve against.
	DirectiveCurrentModule DirectiveKind = "py:currentmodule"
)

// DocDirective asks the documentation renderer to auto-document a symbol.
type DocDirective struct {
	// Symbol is the fully qualified name (e.g. "mypkg.mod.f").
	Symbol string `json:"symbol" yaml:"symbol"`

	Kind DirectiveKind `json:"kind" yaml:"kind"`
}

// Markdown renders the directive as a fenced MyST block.
func (d DocDirective) Markdown() string {
	return "```{" + string(d.Kind) + "} " + d.Symbol + "\n```"
}
