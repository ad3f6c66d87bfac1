// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "path/filepath"

// EmptyModulePolicy decides what happens when a notebook exports no cells.
type EmptyModulePolicy string

const (
	// EmptyModuleSkip writes no module file.
	EmptyModuleSkip EmptyModulePolicy = "skip"
	// EmptyModuleWrite writes a module containing only the provenance header.
	EmptyModuleWrite EmptyModulePolicy = "write"
)

// DirectoryRule maps a notebook directory (relative to SourceDir) to a
// package directory (relative to CodeDir). The empty string denotes the root
// on either side.
type DirectoryRule struct {
	Notebook string `json:"notebook" yaml:"notebook" mapstructure:"notebook"`
	Package  string `json:"package" yaml:"package" mapstructure:"package"`
}

// ModuleRule maps a notebook file stem (e.g. "00_core") to a module stem
// (e.g. "core").
type ModuleRule struct {
	Notebook string `json:"notebook" yaml:"notebook" mapstructure:"notebook"`
	Module   string `json:"module" yaml:"module" mapstructure:"module"`
}

// ProjectConfig holds the fully resolved settings for an export run.
type ProjectConfig struct {
	// Root is the project directory. Relative directories below are resolved
	// against it. It is normally the directory holding the config file.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// SourceDir contains the source notebooks.
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// CodeDir is the package root. Its base name is the package name used
	// when qualifying modules and rewriting imports.
	CodeDir string `json:"code_dir" yaml:"code_dir" mapstructure:"code_dir"`

	// DocDir receives annotated notebooks. Empty disables doc export.
	DocDir string `json:"doc_dir" yaml:"doc_dir" mapstructure:"doc_dir"`

	// DocIndex optionally names a file listing already documented symbols.
	DocIndex string `json:"doc_index,omitempty" yaml:"doc_index,omitempty" mapstructure:"doc_index"`

	// EmptyModule selects the behavior for notebooks without exported cells.
	EmptyModule EmptyModulePolicy `json:"empty_module" yaml:"empty_module" mapstructure:"empty_module"`

	// Jobs bounds how many notebooks are processed concurrently (0 = NumCPU).
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`

	Directories []DirectoryRule `json:"directories,omitempty" yaml:"directories,omitempty" mapstructure:"directories"`
	Modules     []ModuleRule    `json:"modules,omitempty" yaml:"modules,omitempty" mapstructure:"modules"`
}

// SourcePath returns SourceDir resolved against Root.
func (c ProjectConfig) SourcePath() string { return c.resolve(c.SourceDir) }

// CodePath returns CodeDir resolved against Root.
func (c ProjectConfig) CodePath() string { return c.resolve(c.CodeDir) }

// DocPath returns DocDir resolved against Root, or "" when doc export is off.
func (c ProjectConfig) DocPath() string {
	if c.DocDir == "" {
		return ""
	}
	return c.resolve(c.DocDir)
}

// DocIndexPath returns DocIndex resolved against Root, or "".
func (c ProjectConfig) DocIndexPath() string {
	if c.DocIndex == "" {
		return ""
	}
	return c.resolve(c.DocIndex)
}

// PackageName is the top-level Python package name.
func (c ProjectConfig) PackageName() string {
	return filepath.Base(filepath.Clean(c.CodeDir))
}

func (c ProjectConfig) resolve(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
