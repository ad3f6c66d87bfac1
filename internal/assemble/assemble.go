// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble builds the generated Python module from a notebook's
// exported cells and writes it.
package assemble

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/literate/internal/fsutil"
	"github.com/pdiddy/literate/internal/imports"
	"github.com/pdiddy/literate/internal/layout"
	"github.com/pdiddy/literate/pkg/types"
)

// headerMarker starts every generated module.
const headerMarker = "# AUTOGENERATED by literate. DO NOT EDIT."

// Header returns the provenance block naming the source notebook.
func Header(sourcePath string) string {
	return headerMarker + "\n" +
		"# This file is regenerated from its notebook on every export;\n" +
		"# edit `" + sourcePath + "` instead."
}

// IsGenerated reports whether content carries the provenance header.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(headerMarker))
}

// HandEdited reports whether a file exists at path that literate did not
// generate. Missing or unreadable files report false.
func HandEdited(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return !IsGenerated(data)
}

// Assemble rewrites the imports of each export unit for target's module and
// concatenates the results in notebook order.
func Assemble(units []types.ClassifiedCell, rw *imports.Rewriter, target layout.Target) (*types.ModuleArtifact, error) {
	a := &types.ModuleArtifact{
		Path:       target.CodePath,
		SourcePath: target.SourcePath,
		Module:     target.Module,
		Header:     Header(target.SourcePath),
	}
	for _, u := range units {
		src, err := rw.Rewrite(u.Cell.Source, target.Module)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", u.Index, err)
		}
		src = trimBlankLines(commentMagics(src))
		if src == "" {
			continue
		}
		a.Fragments = append(a.Fragments, src)
	}
	return a, nil
}

// Write emits the artifact, replacing whatever is at its path. An empty
// artifact is written only under EmptyModuleWrite; otherwise a module left
// at its path by an earlier export is removed, while a file without the
// provenance header is left alone. It reports whether a file was written.
func Write(a *types.ModuleArtifact, policy types.EmptyModulePolicy) (bool, error) {
	if a.Empty() && policy != types.EmptyModuleWrite {
		return false, removeGenerated(a.Path)
	}
	if err := fsutil.WriteFile(a.Path, a.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// removeGenerated deletes path if literate generated it.
func removeGenerated(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &types.WriteError{Path: path, Err: err}
	}
	if !IsGenerated(data) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	return nil
}

// commentMagics turns IPython magics and shell escapes at column 0 into
// comments so the module stays importable.
func commentMagics(src string) string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "%") || strings.HasPrefix(l, "!") {
			lines[i] = "# " + l
		}
	}
	return strings.Join(lines, "\n")
}

// trimBlankLines drops whitespace-only lines at either end and trailing
// whitespace on the last line.
func trimBlankLines(src string) string {
	lines := strings.Split(src, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return ""
	}
	lines = lines[start:end]
	lines[len(lines)-1] = strings.TrimRight(lines[len(lines)-1], " \t\r")
	return strings.Join(lines, "\n")
}
