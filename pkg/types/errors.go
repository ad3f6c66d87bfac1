// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// FormatError reports a malformed or unsupported notebook document.
type FormatError struct {
	// Path is the notebook file, when known.
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid notebook"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// UnresolvableImportError reports a relative import that names no module in
// the package tree.
type UnresolvableImportError struct {
	// Module is the module being generated.
	Module string
	// Statement is the offending import line, trimmed.
	Statement string
	// Line is the 1-based line within the cell source.
	Line int
}

func (e *UnresolvableImportError) Error() string {
	return fmt.Sprintf("unresolvable import in %s (line %d): %q", e.Module, e.Line, e.Statement)
}

// ConfigError reports a missing or contradictory mapping. It is always raised
// before anything is written.
type ConfigError struct {
	// Field names the offending configuration key, when there is one.
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

// WriteError reports a filesystem failure while emitting an artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
