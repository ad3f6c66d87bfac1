// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook reads and writes nbformat v4 notebooks. Fields the
// pipeline does not interpret are carried as raw JSON so that Serialize is a
// lossless inverse of Parse for them.
package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/literate/pkg/types"
)

// SupportedFormat is the only nbformat major version accepted.
const SupportedFormat = 4

// Keys interpreted by Parse. Anything else is preserved in Extra.
var (
	notebookKeys = map[string]bool{"cells": true, "metadata": true, "nbformat": true, "nbformat_minor": true}
	cellKeys     = map[string]bool{"id": true, "cell_type": true, "source": true, "metadata": true, "outputs": true, "execution_count": true}
)

// ParseFile reads and parses the notebook at path.
func ParseFile(path string) (*types.Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notebook %s: %w", path, err)
	}
	nb, err := Parse(data)
	if err != nil {
		if fe, ok := err.(*types.FormatError); ok {
			fe.Path = path
		}
		return nil, err
	}
	return nb, nil
}

// Parse decodes raw notebook JSON.
func Parse(raw []byte) (*types.Notebook, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &types.FormatError{Reason: "not a JSON object", Err: err}
	}

	nb := &types.Notebook{}

	format, ok := top["nbformat"]
	if !ok {
		return nil, &types.FormatError{Reason: "missing nbformat"}
	}
	if err := json.Unmarshal(format, &nb.Format); err != nil {
		return nil, &types.FormatError{Reason: "nbformat is not an integer", Err: err}
	}
	if nb.Format != SupportedFormat {
		return nil, &types.FormatError{Reason: fmt.Sprintf("unsupported nbformat %d (want %d)", nb.Format, SupportedFormat)}
	}
	if minor, ok := top["nbformat_minor"]; ok {
		if err := json.Unmarshal(minor, &nb.FormatMinor); err != nil {
			return nil, &types.FormatError{Reason: "nbformat_minor is not an integer", Err: err}
		}
	}

	nb.Metadata = map[string]json.RawMessage{}
	if md, ok := top["metadata"]; ok {
		if err := json.Unmarshal(md, &nb.Metadata); err != nil {
			return nil, &types.FormatError{Reason: "notebook metadata is not an object", Err: err}
		}
	}

	rawCells, ok := top["cells"]
	if !ok {
		return nil, &types.FormatError{Reason: "missing cells"}
	}
	var cells []map[string]json.RawMessage
	if err := json.Unmarshal(rawCells, &cells); err != nil {
		return nil, &types.FormatError{Reason: "cells is not an array of objects", Err: err}
	}
	nb.Cells = make([]types.Cell, 0, len(cells))
	for i, rc := range cells {
		c, err := parseCell(rc)
		if err != nil {
			return nil, &types.FormatError{Reason: fmt.Sprintf("cell %d: %s", i, err.Error())}
		}
		nb.Cells = append(nb.Cells, c)
	}

	for k, v := range top {
		if notebookKeys[k] {
			continue
		}
		if nb.Extra == nil {
			nb.Extra = map[string]json.RawMessage{}
		}
		nb.Extra[k] = v
	}
	return nb, nil
}

func parseCell(rc map[string]json.RawMessage) (types.Cell, error) {
	var c types.Cell

	var cellType string
	if err := json.Unmarshal(rc["cell_type"], &cellType); err != nil {
		return c, fmt.Errorf("missing or invalid cell_type")
	}
	c.Type = types.CellType(cellType)
	switch c.Type {
	case types.CellCode, types.CellMarkdown, types.CellRaw:
	default:
		return c, fmt.Errorf("unknown cell_type %q", cellType)
	}

	if id, ok := rc["id"]; ok {
		if err := json.Unmarshal(id, &c.ID); err != nil {
			return c, fmt.Errorf("id is not a string")
		}
	}

	src, err := parseSource(rc["source"])
	if err != nil {
		return c, err
	}
	c.Source = src

	c.Metadata = map[string]json.RawMessage{}
	if md, ok := rc["metadata"]; ok {
		if err := json.Unmarshal(md, &c.Metadata); err != nil {
			return c, fmt.Errorf("metadata is not an object")
		}
	}
	if tags, ok := c.Metadata["tags"]; ok {
		c.Tags = []string{}
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return c, fmt.Errorf("metadata.tags is not a list of strings")
		}
		delete(c.Metadata, "tags")
	}

	if c.Type == types.CellCode {
		c.Outputs = rc["outputs"]
		c.ExecutionCount = rc["execution_count"]
	}

	for k, v := range rc {
		if cellKeys[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = map[string]json.RawMessage{}
		}
		c.Extra[k] = v
	}
	return c, nil
}

// parseSource accepts both the string and the list-of-lines encodings.
func parseSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("source is neither a string nor a list of strings")
	}
	return strings.Join(lines, ""), nil
}

// Serialize encodes nb in the layout nbformat itself writes: sorted keys,
// one-space indentation, sources split into lines, trailing newline.
func Serialize(nb *types.Notebook) ([]byte, error) {
	top := make(map[string]any, len(nb.Extra)+4)
	for k, v := range nb.Extra {
		top[k] = v
	}
	cells := make([]any, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		cells = append(cells, cellMap(c))
	}
	top["cells"] = cells
	top["metadata"] = rawMap(nb.Metadata)
	top["nbformat"] = nb.Format
	top["nbformat_minor"] = nb.FormatMinor

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(top); err != nil {
		return nil, fmt.Errorf("encoding notebook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellMap(c types.Cell) map[string]any {
	m := make(map[string]any, len(c.Extra)+6)
	for k, v := range c.Extra {
		m[k] = v
	}
	if c.ID != "" {
		m["id"] = c.ID
	}
	m["cell_type"] = string(c.Type)
	m["source"] = SplitLines(c.Source)

	md := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		if len(v) > 0 {
			md[k] = v
		}
	}
	if c.Tags != nil {
		md["tags"] = c.Tags
	}
	m["metadata"] = md

	if c.Type == types.CellCode {
		if len(c.Outputs) > 0 {
			m["outputs"] = c.Outputs
		} else {
			m["outputs"] = []any{}
		}
		if len(c.ExecutionCount) > 0 {
			m["execution_count"] = c.ExecutionCount
		} else {
			m["execution_count"] = nil
		}
	}
	return m
}

func rawMap(in map[string]json.RawMessage) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}

// SplitLines splits s into lines that keep their terminators, matching
// nbformat's multi-line string encoding.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
